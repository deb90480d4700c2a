// Command store-migrate manages the schema version of a store file.
//
// Usage:
//
//	store-migrate -db statmap.sqlite -kind coinc up
//	store-migrate -db h1.sqlite -kind triggers version
//	store-migrate -db bank.sqlite -kind bank goto 1
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/banshee-data/coinc.report/internal/store"
	_ "modernc.org/sqlite"
)

var (
	dbPath = flag.String("db", "", "Path to the store file")
	kind   = flag.String("kind", "", fmt.Sprintf("Store kind, one of %v", store.ValidKinds))
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: store-migrate -db <file> -kind <kind> <up|down|version|force N|goto N>\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *dbPath == "" || *kind == "" || flag.NArg() == 0 {
		usage()
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("failed to open %s: %v", *dbPath, err)
	}
	defer db.Close()

	if err := runCommand(db, *kind, flag.Args()); err != nil {
		log.Fatalf("store-migrate: %v", err)
	}
}

func runCommand(db *sql.DB, kind string, args []string) error {
	switch args[0] {
	case "up":
		if err := store.MigrateUp(db, kind); err != nil {
			return err
		}
		log.Printf("%s store is up to date", kind)

	case "down":
		if err := store.MigrateDown(db, kind); err != nil {
			return err
		}
		log.Printf("rolled back one %s migration", kind)

	case "version":
		version, dirty, err := store.MigrateVersion(db, kind)
		if err != nil {
			return err
		}
		if dirty {
			fmt.Printf("version %d (dirty)\n", version)
		} else {
			fmt.Printf("version %d\n", version)
		}

	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force needs a version argument")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := store.MigrateForce(db, kind, version); err != nil {
			return err
		}
		log.Printf("forced %s store to version %d", kind, version)

	case "goto":
		if len(args) < 2 {
			return fmt.Errorf("goto needs a version argument")
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := store.MigrateTo(db, kind, uint(version)); err != nil {
			return err
		}
		log.Printf("migrated %s store to version %d", kind, version)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}
