package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/avriley/tonearm/internal/config"
	"github.com/avriley/tonearm/pkg/types"
)

// Engine ranks tracks against a query. The playlist navigator keeps its
// strict substring filter; this is the looser, scored search behind the
// shell's find command.
type Engine struct {
	cfg *config.Config
}

func NewEngine(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

type scoredTrack struct {
	index int
	score float64
}

// Search returns list indices of tracks matching query, best first,
// capped at the configured max result count.
func (e *Engine) Search(tracks []types.Track, query string) []int {
	if query == "" {
		return nil
	}

	queryLower := strings.ToLower(query)
	var scored []scoredTrack

	for i, track := range tracks {
		titleLower := strings.ToLower(track.Title)
		score := 0.0

		if strings.Contains(titleLower, queryLower) {
			score += 10.0
		}

		distance := fuzzy.LevenshteinDistance(queryLower, titleLower)
		if distance <= len(queryLower)/2 {
			score += float64(len(queryLower) - distance)
		}

		if score > 0 {
			scored = append(scored, scoredTrack{index: i, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	limit := e.cfg.Search.MaxResults
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	result := make([]int, 0, len(scored))
	for _, s := range scored {
		result = append(result, s.index)
	}
	return result
}
