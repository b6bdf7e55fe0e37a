package playlist

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avriley/tonearm/pkg/types"
)

// prevThreshold is how far into a track "previous" restarts it instead of
// switching to the predecessor.
const prevThreshold = 3 * time.Second

// Navigator resolves what plays next over a search-filtered view of an
// immutable track list. It owns the filter, the shuffle permutation and
// the repeat-one flag; it never touches the engine.
type Navigator struct {
	mu sync.RWMutex

	tracks   []types.Track
	query    string
	filtered []int

	shuffle bool
	order   []int // permutation of filtered, captured when shuffle was enabled

	repeatOne bool
}

// NewNavigator takes ownership of tracks and sorts them case-insensitively
// by title, which is the canonical non-shuffle traversal order.
func NewNavigator(tracks []types.Track) *Navigator {
	sorted := make([]types.Track, len(tracks))
	copy(sorted, tracks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Title) < strings.ToLower(sorted[j].Title)
	})

	n := &Navigator{tracks: sorted}
	n.recomputeFiltered()
	return n
}

// SetSearch recomputes the filtered index sequence: all tracks whose title
// contains query case-insensitively, every track for an empty query. The
// shuffle permutation is left alone until shuffle is re-enabled.
func (n *Navigator) SetSearch(query string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.query = query
	n.recomputeFiltered()
}

func (n *Navigator) recomputeFiltered() {
	q := strings.ToLower(n.query)
	n.filtered = n.filtered[:0]
	for i, tr := range n.tracks {
		if q == "" || strings.Contains(strings.ToLower(tr.Title), q) {
			n.filtered = append(n.filtered, i)
		}
	}
}

// ToggleShuffle flips shuffle mode. Enabling captures a fresh uniformly
// random permutation of the current filtered sequence; disabling leaves
// the stale permutation behind until the next enable.
func (n *Navigator) ToggleShuffle() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.shuffle = !n.shuffle
	if n.shuffle {
		n.order = make([]int, len(n.filtered))
		copy(n.order, n.filtered)
		rand.Shuffle(len(n.order), func(i, j int) {
			n.order[i], n.order[j] = n.order[j], n.order[i]
		})
	}
	return n.shuffle
}

// ToggleRepeatOne flips the repeat-one flag.
func (n *Navigator) ToggleRepeatOne() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.repeatOne = !n.repeatOne
	return n.repeatOne
}

// Next resolves the track after current. Repeat-one pins the current
// track; otherwise the successor comes from the shuffle permutation or
// the filtered sequence, with no wraparound at the end.
func (n *Navigator) Next(current int) (int, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.repeatOne {
		return current, true
	}
	if n.shuffle {
		return successor(n.order, current)
	}
	return successor(n.filtered, current)
}

// AutoAdvance resolves the follow-up track when a session drains on its
// own. Identical to Next; no result means playback simply stops.
func (n *Navigator) AutoAdvance(current int) (int, bool) {
	return n.Next(current)
}

// Prev resolves the "previous" action. More than three seconds into the
// track it asks for a restart of the current track (restart=true); before
// that it yields the predecessor. Shuffle wraps to the permutation's last
// element when current is first or absent; the plain order never wraps.
func (n *Navigator) Prev(current int, position time.Duration) (index int, restart bool, ok bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if position > prevThreshold {
		return current, true, true
	}
	if n.shuffle {
		if idx, ok := predecessorWrap(n.order, current); ok {
			return idx, false, true
		}
		return 0, false, false
	}
	if idx, ok := predecessor(n.filtered, current); ok {
		return idx, false, true
	}
	return 0, false, false
}

func successor(seq []int, current int) (int, bool) {
	for p, v := range seq {
		if v == current {
			if p+1 < len(seq) {
				return seq[p+1], true
			}
			return 0, false
		}
	}
	return 0, false
}

func predecessor(seq []int, current int) (int, bool) {
	for p, v := range seq {
		if v == current {
			if p > 0 {
				return seq[p-1], true
			}
			return 0, false
		}
	}
	return 0, false
}

func predecessorWrap(seq []int, current int) (int, bool) {
	if len(seq) == 0 {
		return 0, false
	}
	for p, v := range seq {
		if v == current {
			if p > 0 {
				return seq[p-1], true
			}
			return seq[len(seq)-1], true
		}
	}
	return seq[len(seq)-1], true
}

// Query returns the current search query.
func (n *Navigator) Query() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.query
}

// Filtered returns a copy of the current filtered index sequence.
func (n *Navigator) Filtered() []int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]int, len(n.filtered))
	copy(out, n.filtered)
	return out
}

// First returns the first index of the filtered sequence.
func (n *Navigator) First() (int, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if len(n.filtered) == 0 {
		return 0, false
	}
	return n.filtered[0], true
}

// Track returns the track at a list index.
func (n *Navigator) Track(index int) (types.Track, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if index < 0 || index >= len(n.tracks) {
		return types.Track{}, false
	}
	return n.tracks[index], true
}

// Tracks returns the full sorted track list.
func (n *Navigator) Tracks() []types.Track {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]types.Track, len(n.tracks))
	copy(out, n.tracks)
	return out
}

// ShuffleEnabled reports the shuffle flag.
func (n *Navigator) ShuffleEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.shuffle
}

// RepeatOneEnabled reports the repeat-one flag.
func (n *Navigator) RepeatOneEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.repeatOne
}

// ShuffleOrder returns a copy of the captured permutation.
func (n *Navigator) ShuffleOrder() []int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]int, len(n.order))
	copy(out, n.order)
	return out
}
