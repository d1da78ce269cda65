package planner_test

import (
	"fmt"
	"testing"

	"clipforge/internal/library"
	"clipforge/internal/planner"
)

func trackList(n int) []library.Track {
	tracks := make([]library.Track, n)
	for i := range tracks {
		tracks[i] = library.Track{
			Path: fmt.Sprintf("/music/%02d.mp3", i),
			Name: fmt.Sprintf("%02d.mp3", i),
		}
	}
	return tracks
}

func TestSinglePolicyOneJobPerTrack(t *testing.T) {
	tracks := trackList(5)
	batches, cursor := planner.NextBatches(tracks, planner.Policy{Kind: planner.PolicySingle, GroupSize: 3}, 1)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if cursor != 4 {
		t.Fatalf("expected cursor 4, got %d", cursor)
	}
	for i, batch := range batches {
		if len(batch.Tracks) != 1 {
			t.Fatalf("batch %d: expected one track, got %d", i, len(batch.Tracks))
		}
		if batch.Album {
			t.Fatalf("batch %d: single policy must not be an album", i)
		}
		if batch.Tracks[0].Path != tracks[1+i].Path {
			t.Fatalf("batch %d: unexpected track %s", i, batch.Tracks[0].Path)
		}
	}
}

func TestAlbumPolicySingleGroup(t *testing.T) {
	batches, cursor := planner.NextBatches(trackList(10), planner.Policy{
		Kind:          planner.PolicyAlbum,
		GroupSize:     4,
		TargetSeconds: 600,
	}, 0)
	if len(batches) != 1 {
		t.Fatalf("expected one group, got %d", len(batches))
	}
	if len(batches[0].Tracks) != 4 || !batches[0].Album || batches[0].TargetSeconds != 600 {
		t.Fatalf("unexpected batch: %+v", batches[0])
	}
	if cursor != 4 {
		t.Fatalf("expected cursor 4, got %d", cursor)
	}
}

func TestAlbumPolicyUntilExhausted(t *testing.T) {
	batches, cursor := planner.NextBatches(trackList(10), planner.Policy{
		Kind:           planner.PolicyAlbum,
		GroupSize:      4,
		UntilExhausted: true,
	}, 0)
	if len(batches) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(batches))
	}
	if len(batches[2].Tracks) != 2 {
		t.Fatalf("final partial group should hold the remainder, got %d tracks", len(batches[2].Tracks))
	}
	if cursor != 10 {
		t.Fatalf("expected cursor at end, got %d", cursor)
	}
}

func TestCursorAtEndYieldsNoBatches(t *testing.T) {
	batches, cursor := planner.NextBatches(trackList(3), planner.Policy{Kind: planner.PolicySingle, GroupSize: 1}, 3)
	if len(batches) != 0 {
		t.Fatalf("expected no batches, got %d", len(batches))
	}
	if cursor != 3 {
		t.Fatalf("cursor should stay at end, got %d", cursor)
	}
}

func TestCursorClamping(t *testing.T) {
	batches, cursor := planner.NextBatches(trackList(3), planner.Policy{Kind: planner.PolicySingle, GroupSize: 1}, 99)
	if len(batches) != 0 || cursor != 3 {
		t.Fatalf("over-long cursor must clamp to library length: batches=%d cursor=%d", len(batches), cursor)
	}
	batches, cursor = planner.NextBatches(trackList(3), planner.Policy{Kind: planner.PolicySingle, GroupSize: 1}, -5)
	if len(batches) != 1 || cursor != 1 {
		t.Fatalf("negative cursor must clamp to zero: batches=%d cursor=%d", len(batches), cursor)
	}
}

// Any sequence of partial runs must cover each track exactly once, matching
// one uninterrupted run.
func TestResumeCoversLibraryExactlyOnce(t *testing.T) {
	tracks := trackList(7)
	policy := planner.Policy{Kind: planner.PolicySingle, GroupSize: 2}

	seen := map[string]int{}
	cursor := 0
	for {
		batches, next := planner.NextBatches(tracks, policy, cursor)
		if len(batches) == 0 {
			break
		}
		for _, batch := range batches {
			for _, track := range batch.Tracks {
				seen[track.Path]++
			}
		}
		cursor = next
	}
	if len(seen) != len(tracks) {
		t.Fatalf("expected all %d tracks processed, got %d", len(tracks), len(seen))
	}
	for path, count := range seen {
		if count != 1 {
			t.Fatalf("track %s processed %d times", path, count)
		}
	}
}
