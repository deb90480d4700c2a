// Package report resolves one candidate coincident event against its trigger
// and template stores and assembles the consolidated diagnostic record.
package report

import (
	"fmt"
	"sort"

	"github.com/banshee-data/coinc.report/internal/store"
)

// InvalidSelectionError reports a selection that cannot identify exactly one
// candidate: no criterion, two criteria, or a value outside the partition.
type InvalidSelectionError struct {
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	return "invalid selection: " + e.Reason
}

// Selection picks one candidate out of a coincidence sub-partition, by rank
// on the joint statistic or by explicit row id. Exactly one criterion must
// be set.
type Selection struct {
	Rank    *int64 // 0 selects the loudest event
	EventID *int64 // row index used directly
}

// Validate checks the selection criteria without consulting any store.
func (sel Selection) Validate() error {
	switch {
	case sel.Rank == nil && sel.EventID == nil:
		return &InvalidSelectionError{Reason: "either a rank or an event id is required"}
	case sel.Rank != nil && sel.EventID != nil:
		return &InvalidSelectionError{Reason: "rank and event id are mutually exclusive"}
	case sel.Rank != nil && *sel.Rank < 0:
		return &InvalidSelectionError{Reason: fmt.Sprintf("rank must be >= 0, got %d", *sel.Rank)}
	case sel.EventID != nil && *sel.EventID < 0:
		return &InvalidSelectionError{Reason: fmt.Sprintf("event id must be >= 0, got %d", *sel.EventID)}
	}
	return nil
}

// Candidate is a resolved selection: the chosen partition row plus a
// provenance label used for report titling.
type Candidate struct {
	Event store.CandidateEvent
	Label string
}

// Select resolves a selection against the loaded partition rows. Rank k
// means the event with the k-th highest statistic; ties rank in ascending
// row order. Event ids address rows directly.
func Select(events []store.CandidateEvent, sel Selection) (Candidate, error) {
	if err := sel.Validate(); err != nil {
		return Candidate{}, err
	}

	if sel.EventID != nil {
		id := *sel.EventID
		for _, ev := range events {
			if ev.Idx == id {
				return Candidate{
					Event: ev,
					Label: fmt.Sprintf("Event id %d", id),
				}, nil
			}
		}
		return Candidate{}, &InvalidSelectionError{
			Reason: fmt.Sprintf("event id %d not in sub-partition (%d rows)", id, len(events)),
		}
	}

	k := *sel.Rank
	if k >= int64(len(events)) {
		return Candidate{}, &InvalidSelectionError{
			Reason: fmt.Sprintf("rank %d out of range for sub-partition with %d rows", k, len(events)),
		}
	}

	// Stable sort keeps equal statistics in ascending row order.
	order := make([]int, len(events))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return events[order[i]].Stat > events[order[j]].Stat
	})

	label := fmt.Sprintf("Coincident event at rank %d (0 is loudest)", k)
	if k == 0 {
		label = "Loudest coincident event"
	}
	return Candidate{Event: events[order[k]], Label: label}, nil
}
