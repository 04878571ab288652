package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franz/playtest-history/internal/actions"
	"github.com/franz/playtest-history/internal/util"
)

func newSession(t *testing.T, store *Store) int64 {
	t.Helper()
	id, err := store.AddSession(NewSession{Version: "v1", Player1: "Ann", Player2: "Ben"})
	require.NoError(t, err)
	return id
}

func tableCount(t *testing.T, store *Store, table string) int {
	t.Helper()
	var n int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestAddActionHydration(t *testing.T) {
	store := openTestStore(t)
	sessionID := newSession(t, store)

	first, err := store.AddAction(NewAction{
		SessionID: sessionID,
		Player:    "Ann",
		Type:      "Salvo",
		Notes:     "opening barrage",
		Primary:   "Battery 1",
		Secondary: []string{"Tank 2", " Tank 1 ", ""},
		Tags:      []string{"long range", "hit", "hit"},
	})
	require.NoError(t, err)

	second, err := store.AddAction(NewAction{SessionID: sessionID, Player: "Ben", Type: "Skip"})
	require.NoError(t, err)

	list, err := store.ActionsForSession(sessionID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	a := list[0]
	assert.Equal(t, first, a.ID)
	assert.Equal(t, sessionID, a.SessionID)
	assert.Equal(t, "Ann", a.Player)
	assert.Equal(t, "Salvo", a.Type)
	assert.Equal(t, "opening barrage", a.Notes)
	assert.Equal(t, 1, a.Position)
	assert.Equal(t, "Battery 1", a.Primary)
	assert.Equal(t, []string{"Tank 2", "Tank 1"}, a.Secondary, "order kept, blanks dropped")
	assert.Equal(t, []string{"long range", "hit"}, a.Tags, "duplicate tag collapses")

	b := list[1]
	assert.Equal(t, second, b.ID)
	assert.Equal(t, 2, b.Position)
	assert.Empty(t, b.Primary)
	assert.Empty(t, b.Secondary)
	assert.Empty(t, b.Tags)
}

func TestAddActionUppercasesObjectiveParticipants(t *testing.T) {
	store := openTestStore(t)
	sessionID := newSession(t, store)

	id, err := store.AddAction(NewAction{
		SessionID: sessionID,
		Player:    "Ann",
		Type:      "Capture",
		Primary:   "Scout team",
		Secondary: []string{"obj b"},
	})
	require.NoError(t, err)

	a, err := store.GetAction(id)
	require.NoError(t, err)
	assert.Equal(t, "Scout team", a.Primary)
	assert.Equal(t, []string{"OBJ B"}, a.Secondary)
}

func TestAddActionInvalidTypeWritesNothing(t *testing.T) {
	store := openTestStore(t)
	sessionID := newSession(t, store)

	_, err := store.AddAction(NewAction{
		SessionID: sessionID,
		Player:    "Ann",
		Type:      "Teleport",
		Primary:   "Squad",
		Secondary: []string{"Tank"},
		Tags:      []string{"new-tag"},
	})
	require.ErrorIs(t, err, util.ErrInvalidActionType)
	assert.ErrorIs(t, err, util.ErrValidation)

	for _, table := range []string{"actions", "action_participants", "action_tags", "tags"} {
		assert.Zero(t, tableCount(t, store, table), table)
	}
}

func TestAddActionRejections(t *testing.T) {
	store := openTestStore(t)
	sessionID := newSession(t, store)

	_, err := store.AddAction(NewAction{SessionID: sessionID + 50, Player: "Ann", Type: "Move"})
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = store.AddAction(NewAction{SessionID: sessionID, Player: "Zed", Type: "Move", Tags: []string{"x"}})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = store.AddAction(NewAction{SessionID: sessionID, Type: "Move"})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = store.AddAction(NewAction{SessionID: sessionID, Player: "Ann"})
	assert.ErrorIs(t, err, util.ErrValidation)

	for _, table := range []string{"actions", "action_tags", "tags"} {
		assert.Zero(t, tableCount(t, store, table), table)
	}
}

func TestSequencePositionIsPerSession(t *testing.T) {
	store := openTestStore(t)
	s1 := newSession(t, store)
	s2 := newSession(t, store)

	for _, sid := range []int64{s1, s2, s1} {
		_, err := store.AddAction(NewAction{SessionID: sid, Player: "Ben", Type: "Move"})
		require.NoError(t, err)
	}

	list, err := store.ActionsForSession(s1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Position)
	assert.Equal(t, 2, list[1].Position)

	list, err = store.ActionsForSession(s2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Position)
}

func TestUpdateActionReplacesWholesale(t *testing.T) {
	store := openTestStore(t)
	sessionID := newSession(t, store)

	id, err := store.AddAction(NewAction{
		SessionID: sessionID,
		Player:    "Ann",
		Type:      "Shot",
		Primary:   "Squad A",
		Secondary: []string{"Tank 1"},
		Tags:      []string{"miss"},
	})
	require.NoError(t, err)

	err = store.UpdateAction(id, ActionEdit{
		Type:      "Check Shot",
		Notes:     "re-rolled",
		Secondary: []string{"Tank 2", "Tank 3"},
		Tags:      []string{"hit"},
	})
	require.NoError(t, err)

	a, err := store.GetAction(id)
	require.NoError(t, err)
	assert.Equal(t, "Check Shot", a.Type)
	assert.Equal(t, "re-rolled", a.Notes)
	assert.Equal(t, "Ann", a.Player)
	assert.Empty(t, a.Primary)
	assert.Equal(t, []string{"Tank 2", "Tank 3"}, a.Secondary)
	assert.Equal(t, []string{"hit"}, a.Tags)
	assert.Equal(t, 2, tableCount(t, store, "tags"), "old tag stays interned")

	err = store.UpdateAction(id, ActionEdit{Type: "Nope"})
	assert.ErrorIs(t, err, util.ErrInvalidActionType)
	a, err = store.GetAction(id)
	require.NoError(t, err)
	assert.Equal(t, "Check Shot", a.Type, "rejected edit must not apply")

	assert.ErrorIs(t, store.UpdateAction(id+10, ActionEdit{Type: "Move"}), util.ErrNotFound)
}

func TestDeleteAction(t *testing.T) {
	store := openTestStore(t)
	sessionID := newSession(t, store)

	id, err := store.AddAction(NewAction{
		SessionID: sessionID,
		Player:    "Ann",
		Type:      "Advance",
		Primary:   "Squad A",
		Tags:      []string{"fast"},
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteAction(id))
	for _, table := range []string{"actions", "action_participants", "action_tags"} {
		assert.Zero(t, tableCount(t, store, table), table)
	}

	_, err = store.GetAction(id)
	assert.ErrorIs(t, err, util.ErrNotFound)
	assert.ErrorIs(t, store.DeleteAction(id), util.ErrNotFound)
}

func TestEnsureTagIsIdempotent(t *testing.T) {
	store := openTestStore(t)

	first, err := store.EnsureTag("flank")
	require.NoError(t, err)
	second, err := store.EnsureTag("flank")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, tableCount(t, store, "tags"))

	other, err := store.EnsureTag("Flank")
	require.NoError(t, err)
	assert.NotEqual(t, first, other, "tag names are case-sensitive")

	_, err = store.EnsureTag("  ")
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestListTagsCountsUses(t *testing.T) {
	store := openTestStore(t)
	sessionID := newSession(t, store)

	_, err := store.EnsureTag("unused")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := store.AddAction(NewAction{SessionID: sessionID, Player: "Ann", Type: "Move", Tags: []string{"flank"}})
		require.NoError(t, err)
	}

	tags, err := store.ListTags()
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "flank", tags[0].Name)
	assert.Equal(t, 2, tags[0].Uses)
	assert.Equal(t, "unused", tags[1].Name)
	assert.Zero(t, tags[1].Uses)
}

func TestCustomCatalogValidation(t *testing.T) {
	catalog, err := actions.New([]actions.Kind{{Name: "Strike", Size: actions.Big}})
	require.NoError(t, err)

	store, err := OpenWithOptions(filepath.Join(t.TempDir(), "custom.db"), &OpenOptions{Catalog: catalog})
	require.NoError(t, err)
	defer store.Close()

	sessionID := newSession(t, store)
	_, err = store.AddAction(NewAction{SessionID: sessionID, Player: "Ann", Type: "Strike"})
	assert.NoError(t, err)
	_, err = store.AddAction(NewAction{SessionID: sessionID, Player: "Ann", Type: "Move"})
	assert.ErrorIs(t, err, util.ErrInvalidActionType)
	assert.Same(t, catalog, store.Catalog())
}
