package store

import (
	"context"
	"fmt"
)

// Changes compares the records of a run with the run recorded just before it.
// Records are matched by kind and id; a record whose digest differs is
// modified, one with no match is new. Every record of the first run is new.
func (s *Store) Changes(ctx context.Context, runID string) ([]Change, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	current, err := s.RunResults(ctx, runID)
	if err != nil {
		return nil, err
	}

	prevID, err := s.previousRunID(ctx, run)
	if err != nil {
		return nil, err
	}
	previous := map[string]RecordRow{}
	if prevID != "" {
		rows, err := s.RunResults(ctx, prevID)
		if err != nil {
			return nil, fmt.Errorf("changes: %w", err)
		}
		for _, r := range rows {
			key := r.Kind + "\x00" + r.RecordID
			if _, seen := previous[key]; !seen {
				previous[key] = r
			}
		}
	}

	changes := make([]Change, 0, len(current))
	for _, r := range current {
		c := Change{RecordRow: r, Status: ChangeNew}
		if prev, ok := previous[r.Kind+"\x00"+r.RecordID]; ok {
			c.PreviousVerdict = prev.Verdict
			c.Status = ChangeUnchanged
			if prev.Digest != r.Digest {
				c.Status = ChangeModified
			}
		}
		changes = append(changes, c)
	}
	return changes, nil
}
