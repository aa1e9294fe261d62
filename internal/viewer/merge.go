package viewer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/D-ignite/webex-cdr/internal/calls"

	"golang.org/x/sync/errgroup"
)

// MergePolicy decides what a failed per-entity fetch does to the whole query.
type MergePolicy int

const (
	// MergeAllOrNothing fails the query when any entity fetch fails.
	MergeAllOrNothing MergePolicy = iota
	// MergePartial keeps successful entities and reports the failed ones.
	MergePartial
)

func (p MergePolicy) String() string {
	if p == MergePartial {
		return "partial"
	}
	return "all-or-nothing"
}

// EntityFailure is one entity whose fetch failed.
type EntityFailure struct {
	EntityID   string
	EntityName string
	Err        error
}

// FetchError wraps the first failure under MergeAllOrNothing, or the only
// failures left when MergePartial had nothing succeed.
type FetchError struct {
	Failures []EntityFailure
}

func (e *FetchError) Error() string {
	if len(e.Failures) == 1 {
		f := e.Failures[0]
		return fmt.Sprintf("fetch calls for %s: %v", f.EntityName, f.Err)
	}
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, f.EntityName)
	}
	return fmt.Sprintf("fetch calls failed for %d users (%s): %v", len(e.Failures), strings.Join(names, ", "), e.Failures[0].Err)
}

func (e *FetchError) Unwrap() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[0].Err
}

type fetchResult struct {
	records []calls.Record
	err     error
}

// fetchMerged issues one concurrent Calls request per entity and joins on all of them.
// Records are concatenated in entity order, tagged with the entity's display name,
// then stably sorted by descending start time.
func fetchMerged(ctx context.Context, gw Gateway, q Query, nameOf func(string) string, policy MergePolicy, parallel int) ([]calls.Record, []EntityFailure, error) {
	results := make([]fetchResult, len(q.EntityIDs))

	var g *errgroup.Group
	gctx := ctx
	if policy == MergeAllOrNothing {
		g, gctx = errgroup.WithContext(ctx)
	} else {
		g = new(errgroup.Group)
	}
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for i, id := range q.EntityIDs {
		g.Go(func() error {
			raws, err := gw.Calls(gctx, CallsRequest{EntityID: id, Start: q.Start, End: q.End, Limit: q.Limit})
			if err != nil {
				results[i].err = err
				if policy == MergeAllOrNothing {
					return &FetchError{Failures: []EntityFailure{{EntityID: id, EntityName: nameOf(id), Err: err}}}
				}
				return nil
			}
			name := nameOf(id)
			recs := make([]calls.Record, 0, len(raws))
			for _, raw := range raws {
				r := raw.Normalize()
				r.EntityName = name
				recs = append(recs, r)
			}
			results[i].records = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		merged   []calls.Record
		failures []EntityFailure
	)
	for i, res := range results {
		if res.err != nil {
			id := q.EntityIDs[i]
			failures = append(failures, EntityFailure{EntityID: id, EntityName: nameOf(id), Err: res.err})
			continue
		}
		merged = append(merged, res.records...)
	}
	if len(failures) > 0 && len(failures) == len(results) {
		return nil, nil, &FetchError{Failures: failures}
	}

	SortByStartDesc(merged)
	return merged, failures, nil
}

// SortByStartDesc orders records newest first; ties keep their arrival order.
func SortByStartDesc(records []calls.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartTime.After(records[j].StartTime)
	})
}
