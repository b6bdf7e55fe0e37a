package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avriley/tonearm/internal/config"
	"github.com/avriley/tonearm/pkg/types"
)

func searchTracks() []types.Track {
	return []types.Track{
		{Title: "Autumn Leaves.mp3"},
		{Title: "Summertime.flac"},
		{Title: "Winter Song.ogg"},
		{Title: "autumn in new york.mp3"},
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	e := NewEngine(config.Default())
	assert.Nil(t, e.Search(searchTracks(), ""))
}

func TestSearchSubstringMatchesRankFirst(t *testing.T) {
	e := NewEngine(config.Default())

	got := e.Search(searchTracks(), "autumn")
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []int{0, 3}, got)
}

func TestSearchNoMatches(t *testing.T) {
	e := NewEngine(config.Default())
	assert.Empty(t, e.Search(searchTracks(), "xylophone"))
}

func TestSearchCaseInsensitive(t *testing.T) {
	e := NewEngine(config.Default())
	got := e.Search(searchTracks(), "SUMMERTIME")
	require.NotEmpty(t, got)
	assert.Equal(t, 1, got[0])
}

func TestSearchRespectsMaxResults(t *testing.T) {
	cfg := config.Default()
	cfg.Search.MaxResults = 1
	e := NewEngine(cfg)

	got := e.Search(searchTracks(), "autumn")
	assert.Len(t, got, 1)
}
