package store

import (
	"database/sql"
	"fmt"

	"github.com/franz/playtest-history/internal/util"
)

// normalizeParticipants trims the free-text fields shared by NewAction and
// ActionEdit and applies the action kind's casing rule
func (s *Store) normalizeParticipants(actionType, primary string, secondary, tags []string) (string, []string, []string) {
	primary = util.NormalizeName(primary)
	secondary = s.catalog.NormalizeSecondary(actionType, util.NormalizeNames(secondary))
	tags = util.NormalizeNames(tags)
	return primary, secondary, tags
}

// AddAction appends an action to the end of a session's log and returns its ID.
// Nothing is written when validation fails.
func (s *Store) AddAction(in NewAction) (int64, error) {
	in, err := s.prepareAction(in)
	if err != nil {
		return 0, err
	}

	var actionID int64
	err = s.Transaction(func(tx *sql.Tx) error {
		var err error
		actionID, err = insertAction(tx, in)
		return err
	})
	if err != nil {
		return 0, err
	}

	return actionID, nil
}

func (s *Store) prepareAction(in NewAction) (NewAction, error) {
	in.Player = util.NormalizeName(in.Player)
	in.Type = util.NormalizeName(in.Type)
	if err := s.check(in); err != nil {
		return in, err
	}
	in.Primary, in.Secondary, in.Tags = s.normalizeParticipants(in.Type, in.Primary, in.Secondary, in.Tags)
	return in, nil
}

func insertAction(tx *sql.Tx, in NewAction) (int64, error) {
	if err := sessionExists(tx, in.SessionID); err != nil {
		return 0, err
	}

	playerID, err := sessionPlayerID(tx, in.SessionID, in.Player)
	if err != nil {
		return 0, err
	}
	if playerID == 0 {
		return 0, util.Validationf("player %q is not in session %d", in.Player, in.SessionID)
	}

	var next int
	if err := tx.QueryRow(`
		SELECT COALESCE(MAX(sequence_position), 0) + 1 FROM actions WHERE session_id = ?
	`, in.SessionID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to get next sequence position: %w", err)
	}

	result, err := tx.Exec(`
		INSERT INTO actions (session_id, player_id, type, notes, sequence_position)
		VALUES (?, ?, ?, ?, ?)
	`, in.SessionID, playerID, in.Type, in.Notes, next)
	if err != nil {
		return 0, fmt.Errorf("failed to insert action: %w", err)
	}
	actionID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get action ID: %w", err)
	}

	if err := writeParticipants(tx, actionID, in.Primary, in.Secondary); err != nil {
		return 0, err
	}
	if err := writeTags(tx, actionID, in.Tags); err != nil {
		return 0, err
	}
	return actionID, nil
}

// UpdateAction replaces an action's type, notes, participants and tags
func (s *Store) UpdateAction(id int64, edit ActionEdit) error {
	edit.Type = util.NormalizeName(edit.Type)
	if err := s.check(edit); err != nil {
		return err
	}
	edit.Primary, edit.Secondary, edit.Tags = s.normalizeParticipants(edit.Type, edit.Primary, edit.Secondary, edit.Tags)

	return s.Transaction(func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			UPDATE actions SET type = ?, notes = ? WHERE id = ?
		`, edit.Type, edit.Notes, id)
		if err != nil {
			return fmt.Errorf("failed to update action: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update action: %w", err)
		}
		if n == 0 {
			return util.NotFoundf("action %d", id)
		}

		if _, err := tx.Exec(`DELETE FROM action_participants WHERE action_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear participants: %w", err)
		}
		if err := writeParticipants(tx, id, edit.Primary, edit.Secondary); err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM action_tags WHERE action_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		return writeTags(tx, id, edit.Tags)
	})
}

// DeleteAction removes an action after its tags and participants
func (s *Store) DeleteAction(id int64) error {
	return s.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM action_tags WHERE action_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete action tags: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM action_participants WHERE action_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete action participants: %w", err)
		}

		result, err := tx.Exec(`DELETE FROM actions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete action: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete action: %w", err)
		}
		if n == 0 {
			return util.NotFoundf("action %d", id)
		}
		return nil
	})
}

// GetAction retrieves one fully hydrated action
func (s *Store) GetAction(id int64) (*Action, error) {
	list, err := s.loadActions("a.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, util.NotFoundf("action %d", id)
	}
	return list[0], nil
}

// ActionsForSession returns a session's action log in sequence order, each
// action carrying its player, participants and tags
func (s *Store) ActionsForSession(sessionID int64) ([]*Action, error) {
	if err := sessionExists(s.db, sessionID); err != nil {
		return nil, err
	}
	return s.loadActions("a.session_id = ?", sessionID)
}

// CountActions returns the number of actions across all sessions
func (s *Store) CountActions() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM actions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count actions: %w", err)
	}
	return count, nil
}

// loadActions reads the actions matching scope, then their participants and
// tags. Each result set is drained before the next query is issued because
// the pool holds a single connection.
func (s *Store) loadActions(scope string, arg int64) ([]*Action, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.session_id, p.name, a.type, a.notes, a.sequence_position
		FROM actions a
		JOIN players p ON p.id = a.player_id
		WHERE `+scope+`
		ORDER BY a.sequence_position, a.id
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}

	var list []*Action
	byID := make(map[int64]*Action)
	for rows.Next() {
		a := &Action{}
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Player, &a.Type, &a.Notes, &a.Position); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		list = append(list, a)
		byID[a.ID] = a
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	if err := s.loadParticipants(scope, arg, byID); err != nil {
		return nil, err
	}
	if err := s.loadTags(scope, arg, byID); err != nil {
		return nil, err
	}

	return list, nil
}

func (s *Store) loadParticipants(scope string, arg int64, byID map[int64]*Action) error {
	rows, err := s.db.Query(`
		SELECT ap.action_id, ap.is_primary, ap.name_text
		FROM action_participants ap
		JOIN actions a ON a.id = ap.action_id
		WHERE `+scope+`
		ORDER BY ap.action_id, ap.position, ap.rowid
	`, arg)
	if err != nil {
		return fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var actionID int64
		var primary bool
		var name string
		if err := rows.Scan(&actionID, &primary, &name); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		a, ok := byID[actionID]
		if !ok {
			continue
		}
		if primary && a.Primary == "" {
			a.Primary = name
		} else if !primary {
			a.Secondary = append(a.Secondary, name)
		}
	}

	return rows.Err()
}

func (s *Store) loadTags(scope string, arg int64, byID map[int64]*Action) error {
	rows, err := s.db.Query(`
		SELECT at.action_id, t.name
		FROM action_tags at
		JOIN tags t ON t.id = at.tag_id
		JOIN actions a ON a.id = at.action_id
		WHERE `+scope+`
		ORDER BY at.action_id, at.rowid
	`, arg)
	if err != nil {
		return fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var actionID int64
		var name string
		if err := rows.Scan(&actionID, &name); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		if a, ok := byID[actionID]; ok {
			a.Tags = append(a.Tags, name)
		}
	}

	return rows.Err()
}

// writeParticipants stores at most one primary participant followed by the
// secondary participants in order
func writeParticipants(tx *sql.Tx, actionID int64, primary string, secondary []string) error {
	if primary != "" {
		if _, err := tx.Exec(`
			INSERT INTO action_participants (action_id, is_primary, name_text, position)
			VALUES (?, 1, ?, 0)
		`, actionID, primary); err != nil {
			return fmt.Errorf("failed to insert primary participant: %w", err)
		}
	}

	if len(secondary) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`
		INSERT INTO action_participants (action_id, is_primary, name_text, position)
		VALUES (?, 0, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare participant insert: %w", err)
	}
	defer stmt.Close()

	for i, name := range secondary {
		if _, err := stmt.Exec(actionID, name, i+1); err != nil {
			return fmt.Errorf("failed to insert secondary participant: %w", err)
		}
	}
	return nil
}

// writeTags interns each tag and links it to the action once
func writeTags(tx *sql.Tx, actionID int64, tags []string) error {
	for _, name := range tags {
		tagID, err := ensureTag(tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO action_tags (action_id, tag_id) VALUES (?, ?)
		`, actionID, tagID); err != nil {
			return fmt.Errorf("failed to link tag %q: %w", name, err)
		}
	}
	return nil
}
