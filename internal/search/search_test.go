package search

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franz/playtest-history/internal/store"
	"github.com/franz/playtest-history/internal/util"
)

// seed builds two sessions:
//
//	v1: Ann Salvo   primary "Squad A"  secondary [Tank 1, Tank 2]  tags [hit, flank]
//	v1: Ben Shot    primary "Sniper"   secondary [Squad A]         tags [hit]
//	v1: Ann Deploy  no participants                                tags [setup]
//	v2: Ann Shot    primary "Squad B"  secondary [Tank 1]          tags [miss]
//	v2: Ben Embark  primary "Tank 1"                               no tags
func seed(t *testing.T) *Engine {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "search.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s1, err := db.AddSession(store.NewSession{Version: "v1", Player1: "Ann", Player2: "Ben"})
	require.NoError(t, err)
	s2, err := db.AddSession(store.NewSession{Version: "v2", Player1: "Ann", Player2: "Ben"})
	require.NoError(t, err)

	entries := []store.NewAction{
		{SessionID: s1, Player: "Ann", Type: "Salvo", Primary: "Squad A", Secondary: []string{"Tank 1", "Tank 2"}, Tags: []string{"hit", "flank"}},
		{SessionID: s1, Player: "Ben", Type: "Shot", Primary: "Sniper", Secondary: []string{"Squad A"}, Tags: []string{"hit"}},
		{SessionID: s1, Player: "Ann", Type: "Deploy", Tags: []string{"setup"}},
		{SessionID: s2, Player: "Ann", Type: "Shot", Primary: "Squad B", Secondary: []string{"Tank 1"}, Tags: []string{"miss"}},
		{SessionID: s2, Player: "Ben", Type: "Embark", Primary: "Tank 1"},
	}
	for _, e := range entries {
		_, err := db.AddAction(e)
		require.NoError(t, err)
	}

	return New(db.DB())
}

func TestSearchTotals(t *testing.T) {
	e := seed(t)

	tests := []struct {
		name    string
		filters Filters
		want    int
	}{
		{"no filters", Filters{}, 5},
		{"version", Filters{Version: "v1"}, 3},
		{"version exact", Filters{Version: "v"}, 0},
		{"type", Filters{Type: "Shot"}, 2},
		{"type exact", Filters{Type: "shot"}, 0},
		{"primary substring", Filters{Primary: "squad"}, 2},
		{"secondary substring", Filters{Secondary: "tank"}, 2},
		{"secondary ignores primary rows", Filters{Secondary: "sniper"}, 0},
		{"tag substring", Filters{Tag: "HI"}, 2},
		{"anded", Filters{Version: "v1", Type: "Shot", Tag: "hit"}, 1},
		{"wildcards are literal", Filters{Primary: "%"}, 0},
		{"underscore is literal", Filters{Tag: "_"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Search(tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Total)
			assert.Empty(t, res.Breakdowns)
		})
	}
}

func TestSearchBreakdowns(t *testing.T) {
	e := seed(t)

	res, err := e.Search(Filters{}, Dimensions...)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)

	assert.Equal(t, []Count{{"v1", 3}, {"v2", 2}}, res.Breakdowns[ByVersion])
	assert.Equal(t, []Count{{"Shot", 2}, {"Deploy", 1}, {"Embark", 1}, {"Salvo", 1}}, res.Breakdowns[ByType])
	assert.Equal(t, []Count{{"Sniper", 1}, {"Squad A", 1}, {"Squad B", 1}, {"Tank 1", 1}}, res.Breakdowns[ByPrimary])
	assert.Equal(t, []Count{{"Tank 1", 2}, {"Squad A", 1}, {"Tank 2", 1}}, res.Breakdowns[BySecondary])
	assert.Equal(t, []Count{{"hit", 2}, {"flank", 1}, {"miss", 1}, {"setup", 1}}, res.Breakdowns[ByTag])
}

func TestTagBreakdownCountsActionOncePerTag(t *testing.T) {
	e := seed(t)

	res, err := e.Search(Filters{Tag: "flank"}, ByTag)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total, "an action with two tags counts once in the total")
	assert.Equal(t, []Count{{"flank", 1}, {"hit", 1}}, res.Breakdowns[ByTag])
}

func TestBreakdownRespectsFilters(t *testing.T) {
	e := seed(t)

	res, err := e.Search(Filters{Version: "v2"}, ByType, BySecondary, ByTag)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, []Count{{"Embark", 1}, {"Shot", 1}}, res.Breakdowns[ByType])
	assert.Equal(t, []Count{{"Tank 1", 1}}, res.Breakdowns[BySecondary])
	assert.Equal(t, []Count{{"miss", 1}}, res.Breakdowns[ByTag])

	res, err = e.Search(Filters{Type: "Teleport"}, ByVersion)
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.NotNil(t, res.Breakdowns[ByVersion])
	assert.Empty(t, res.Breakdowns[ByVersion])
}

func TestParseDimension(t *testing.T) {
	for in, want := range map[string]Dimension{
		"version":   ByVersion,
		" Types ":   ByType,
		"PRIMARY":   ByPrimary,
		"secondary": BySecondary,
		"tags":      ByTag,
	} {
		got, err := ParseDimension(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDimension("player")
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%a\%b\_c\\d%`, likePattern(`a%b_c\d`))
}

func TestSubstringFiltersFoldUnicodeCase(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "fold.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sid, err := db.AddSession(store.NewSession{Player1: "Ann", Player2: "Ben"})
	require.NoError(t, err)
	_, err = db.AddAction(store.NewAction{
		SessionID: sid,
		Player:    "Ann",
		Type:      "Move",
		Primary:   "Überläufer",
		Secondary: []string{"ärger"},
		Tags:      []string{"STRASSE"},
	})
	require.NoError(t, err)

	e := New(db.DB())
	for _, f := range []Filters{
		{Secondary: "ärger"},
		{Secondary: "ÄRG"},
		{Primary: "ÜBERLÄUFER"},
		{Tag: "straße"},
	} {
		res, err := e.Search(f)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total, "%+v", f)
	}
}
