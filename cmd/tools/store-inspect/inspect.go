// Command store-inspect serves the debug inspector over a run's store
// files: a live SQL console plus quick views of the foreground
// population, all under /debug/ on a local listener.
package main

import (
	"flag"
	"log"
	"net/http"
	"strings"

	"github.com/banshee-data/coinc.report/internal/inspect"
	"github.com/banshee-data/coinc.report/internal/store"
)

// stringList collects a repeatable flag value.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

var (
	listen       = flag.String("listen", "127.0.0.1:8080", "Listen address")
	coincFile    = flag.String("coinc-file", "", "Coincidence (statmap) store file")
	bankFile     = flag.String("bank-file", "", "Template bank store file")
	partition    = flag.String("partition", "foreground", "Coincidence sub-partition to load")
	triggerFiles stringList
)

func init() {
	flag.Var(&triggerFiles, "trigger-file", "Trigger store file (repeat for each file)")
}

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("a listen address is required")
	}
	if *coincFile == "" {
		log.Fatal("a coincidence store file is required")
	}
	if len(triggerFiles) == 0 {
		log.Fatal("at least one trigger store file is required")
	}
	if *bankFile == "" {
		log.Fatal("a template bank store file is required")
	}

	coinc, err := store.OpenCoinc(*coincFile, *partition)
	if err != nil {
		log.Fatalf("failed to open coincidence store: %v", err)
	}
	defer coinc.Close()

	triggers, err := store.OpenTriggers(triggerFiles)
	if err != nil {
		log.Fatalf("failed to open trigger stores: %v", err)
	}
	defer triggers.Close()

	bank, err := store.OpenBank(*bankFile)
	if err != nil {
		log.Fatalf("failed to open template bank: %v", err)
	}
	defer bank.Close()

	mux := http.NewServeMux()
	if err := inspect.NewServer(coinc, triggers, bank).AttachRoutes(mux); err != nil {
		log.Fatalf("failed to attach inspector routes: %v", err)
	}

	log.Printf("inspector listening on http://%s/debug/", *listen)
	log.Fatal(http.ListenAndServe(*listen, mux))
}
