// Package store reads the SQLite files a search pipeline leaves behind:
// coincidence (statmap) stores, per-detector trigger stores, and template
// banks. All three kinds are opened for reading only; this package never
// writes to a pipeline output. Schema helpers for building new store files
// live alongside for tools and tests.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"regexp"

	_ "modernc.org/sqlite"
)

// CandidateEvent is one row of a coincidence store sub-partition. Idx is the
// row's stable position within the partition; TriggerIdx1 and TriggerIdx2 are
// row indices into the trigger stores of Detector1 and Detector2.
type CandidateEvent struct {
	Idx         int64
	Stat        float64
	IFAR        float64
	FAP         float64
	IFARExc     float64
	FAPExc      float64
	Time1       float64
	Time2       float64
	TriggerIdx1 int64
	TriggerIdx2 int64
}

// CoincStore is an opened coincidence store. The selected sub-partition is
// loaded in full at open; partitions are small compared to trigger stores.
type CoincStore struct {
	*sql.DB
	Path      string
	Partition string
	Detector1 string
	Detector2 string

	events []CandidateEvent
}

var partitionName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// OpenCoinc opens a coincidence store file and loads the named sub-partition.
// The store-level detector attributes and every partition column must be
// present; anything absent surfaces as a StoreAccessError.
func OpenCoinc(path, partition string) (*CoincStore, error) {
	if !partitionName.MatchString(partition) {
		return nil, &StoreAccessError{Path: path, Missing: fmt.Sprintf("sub-partition %q", partition)}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &StoreAccessError{Path: path, Err: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreAccessError{Path: path, Err: err}
	}

	s := &CoincStore{DB: db, Path: path, Partition: partition}
	if s.Detector1, err = s.attr("detector_1"); err != nil {
		db.Close()
		return nil, err
	}
	if s.Detector2, err = s.attr("detector_2"); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.loadEvents(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *CoincStore) attr(key string) (string, error) {
	var value string
	err := s.QueryRow("SELECT value FROM store_attrs WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &StoreAccessError{Path: s.Path, Missing: fmt.Sprintf("store attribute %q", key)}
	}
	if err != nil {
		return "", &StoreAccessError{Path: s.Path, Err: fmt.Errorf("failed to read store attribute %q: %w", key, err)}
	}
	return value, nil
}

func (s *CoincStore) loadEvents() error {
	query := fmt.Sprintf(`SELECT idx, stat, ifar, fap, ifar_exc, fap_exc,
			time1, time2, trigger_id1, trigger_id2
		FROM %q ORDER BY idx`, s.Partition)
	rows, err := s.Query(query)
	if err != nil {
		return &StoreAccessError{Path: s.Path, Err: fmt.Errorf("failed to read sub-partition %q: %w", s.Partition, err)}
	}
	defer rows.Close()

	for rows.Next() {
		var ev CandidateEvent
		if err := rows.Scan(
			&ev.Idx,
			&ev.Stat,
			&ev.IFAR,
			&ev.FAP,
			&ev.IFARExc,
			&ev.FAPExc,
			&ev.Time1,
			&ev.Time2,
			&ev.TriggerIdx1,
			&ev.TriggerIdx2,
		); err != nil {
			return &StoreAccessError{Path: s.Path, Err: err}
		}
		s.events = append(s.events, ev)
	}
	if err := rows.Err(); err != nil {
		return &StoreAccessError{Path: s.Path, Err: err}
	}
	return nil
}

// Events returns the loaded partition rows in stored order.
func (s *CoincStore) Events() []CandidateEvent {
	return s.events
}

// Len returns the number of rows in the loaded partition.
func (s *CoincStore) Len() int {
	return len(s.events)
}

// Detectors returns the store's detector pair in attribute order.
func (s *CoincStore) Detectors() []string {
	return []string{s.Detector1, s.Detector2}
}

// Stats returns the ranking statistic of every loaded row, in stored order.
func (s *CoincStore) Stats() []float64 {
	stats := make([]float64, len(s.events))
	for i, ev := range s.events {
		stats[i] = ev.Stat
	}
	return stats
}
