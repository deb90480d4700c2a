package strain

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	_ "modernc.org/sqlite"
)

const channelsDDL = `CREATE TABLE IF NOT EXISTS channels (
	name TEXT PRIMARY KEY,
	start_time REAL NOT NULL,
	sample_rate REAL NOT NULL,
	samples BLOB NOT NULL
)`

// Store holds named strain channels in a sqlite file. Samples are
// stored as a little-endian float64 blob.
type Store struct {
	*sql.DB
	Path string
}

// Open opens an existing strain file.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat strain file: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open strain file: %w", err)
	}
	return &Store{DB: db, Path: path}, nil
}

// Create creates a new strain file with the channels schema.
func Create(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to create strain file: %w", err)
	}
	if _, err := db.Exec(channelsDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create channels table: %w", err)
	}
	return &Store{DB: db, Path: path}, nil
}

// Channel reads one named channel.
func (s *Store) Channel(name string) (Series, error) {
	series := Series{Name: name}
	var blob []byte

	row := s.QueryRow(`SELECT start_time, sample_rate, samples FROM channels WHERE name = ?`, name)
	if err := row.Scan(&series.StartTime, &series.SampleRate, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Series{}, fmt.Errorf("channel %q not found in %s", name, s.Path)
		}
		return Series{}, fmt.Errorf("failed to read channel %q: %w", name, err)
	}

	samples, err := decodeSamples(blob)
	if err != nil {
		return Series{}, fmt.Errorf("channel %q: %w", name, err)
	}
	series.Samples = samples
	return series, nil
}

// Channels lists the channel names in the store.
func (s *Store) Channels() ([]string, error) {
	rows, err := s.Query(`SELECT name FROM channels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan channel name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate channels: %w", err)
	}
	return names, nil
}

// WriteChannel inserts or replaces a channel.
func (s *Store) WriteChannel(series Series) error {
	_, err := s.Exec(
		`INSERT OR REPLACE INTO channels (name, start_time, sample_rate, samples) VALUES (?, ?, ?, ?)`,
		series.Name, series.StartTime, series.SampleRate, encodeSamples(series.Samples))
	if err != nil {
		return fmt.Errorf("failed to write channel %q: %w", series.Name, err)
	}
	return nil
}

func encodeSamples(samples []float64) []byte {
	buf := make([]byte, 8*len(samples))
	for i, v := range samples {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeSamples(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("sample blob length %d is not a multiple of 8", len(blob))
	}
	samples := make([]float64, len(blob)/8)
	for i := range samples {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return samples, nil
}
