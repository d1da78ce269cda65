// Package planner turns the scanned track library and a batching policy into
// render batches, driven by a resume cursor into the ordered library.
package planner

import (
	"clipforge/internal/library"
)

// Policy names.
const (
	PolicySingle = "single"
	PolicyAlbum  = "album"
)

// Policy describes how the library is sliced into batches.
type Policy struct {
	Kind           string
	GroupSize      int // tracks consumed per batch
	TargetSeconds  int // album duration target, 0 concatenates fully
	UntilExhausted bool
}

// Batch is one planned render job's track slice.
type Batch struct {
	Index         int // 1-based within the plan
	Tracks        []library.Track
	Album         bool
	TargetSeconds int
}

// NextBatches plans the batches starting at cursor and returns them with the
// advanced cursor. The cursor is clamped into [0, len(tracks)]; a cursor at
// the end yields no batches, which is a normal completion, not an error.
//
// Single policy: one batch per track for the next GroupSize tracks. Album
// policy: GroupSize tracks form one batch; with UntilExhausted the grouping
// repeats until the library is consumed.
func NextBatches(tracks []library.Track, p Policy, cursor int) ([]Batch, int) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(tracks) {
		cursor = len(tracks)
	}
	group := p.GroupSize
	if group < 1 {
		group = 1
	}

	var batches []Batch
	switch p.Kind {
	case PolicyAlbum:
		for cursor < len(tracks) {
			end := cursor + group
			if end > len(tracks) {
				end = len(tracks)
			}
			batches = append(batches, Batch{
				Index:         len(batches) + 1,
				Tracks:        tracks[cursor:end],
				Album:         true,
				TargetSeconds: p.TargetSeconds,
			})
			cursor = end
			if !p.UntilExhausted {
				break
			}
		}
	default:
		end := cursor + group
		if end > len(tracks) {
			end = len(tracks)
		}
		for i := cursor; i < end; i++ {
			batches = append(batches, Batch{
				Index:  len(batches) + 1,
				Tracks: tracks[i : i+1],
			})
		}
		cursor = end
	}
	return batches, cursor
}
