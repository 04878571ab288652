package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/franz/playtest-history/internal/util"
)

// AddSession creates a session for two players, creating either player on
// first use, and returns the new session ID
func (s *Store) AddSession(in NewSession) (int64, error) {
	in, err := s.prepareSession(in)
	if err != nil {
		return 0, err
	}

	var sessionID int64
	err = s.Transaction(func(tx *sql.Tx) error {
		var err error
		sessionID, err = insertSession(tx, in)
		return err
	})
	if err != nil {
		return 0, err
	}

	return sessionID, nil
}

// ImportSession creates a session together with its whole action log in one
// transaction. Nothing is written when any action fails.
func (s *Store) ImportSession(in NewSession, log []NewAction) (int64, error) {
	in, err := s.prepareSession(in)
	if err != nil {
		return 0, err
	}

	var sessionID int64
	err = s.Transaction(func(tx *sql.Tx) error {
		var err error
		sessionID, err = insertSession(tx, in)
		if err != nil {
			return err
		}

		for j, a := range log {
			a.SessionID = sessionID
			prepared, err := s.prepareAction(a)
			if err != nil {
				return fmt.Errorf("action %d: %w", j+1, err)
			}
			if _, err := insertAction(tx, prepared); err != nil {
				return fmt.Errorf("action %d: %w", j+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return sessionID, nil
}

func (s *Store) prepareSession(in NewSession) (NewSession, error) {
	in.Version = util.NormalizeName(in.Version)
	in.Player1 = util.NormalizeName(in.Player1)
	in.Player2 = util.NormalizeName(in.Player2)
	if in.Date == "" {
		in.Date = time.Now().Format("2006-01-02")
	}
	return in, s.check(in)
}

func insertSession(tx *sql.Tx, in NewSession) (int64, error) {
	result, err := tx.Exec(`
		INSERT INTO sessions (date, version, notes) VALUES (?, ?, ?)
	`, in.Date, in.Version, in.Notes)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	sessionID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session ID: %w", err)
	}

	for pos, name := range []string{in.Player1, in.Player2} {
		playerID, err := ensurePlayer(tx, name)
		if err != nil {
			return 0, err
		}
		if _, err := tx.Exec(`
			INSERT INTO session_players (session_id, player_id, position) VALUES (?, ?, ?)
		`, sessionID, playerID, pos); err != nil {
			return 0, fmt.Errorf("failed to link player %q: %w", name, err)
		}
	}
	return sessionID, nil
}

// GetSession retrieves a session and its player names
func (s *Store) GetSession(id int64) (*Session, error) {
	sess := &Session{}
	err := s.db.QueryRow(`
		SELECT id, date, version, notes FROM sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Date, &sess.Version, &sess.Notes)
	if isNoRows(err) {
		return nil, util.NotFoundf("session %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	players, err := s.GetSessionPlayers(id)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		sess.Players = append(sess.Players, p.Name)
	}

	return sess, nil
}

// ListSessions returns every session, most recent first
func (s *Store) ListSessions() ([]*Session, error) {
	rows, err := s.db.Query(`
		SELECT id, date, version, notes
		FROM sessions
		ORDER BY date DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	byID := make(map[int64]*Session)
	for rows.Next() {
		sess := &Session{}
		if err := rows.Scan(&sess.ID, &sess.Date, &sess.Version, &sess.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
		byID[sess.ID] = sess
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	playerRows, err := s.db.Query(`
		SELECT sp.session_id, p.name
		FROM session_players sp
		JOIN players p ON p.id = sp.player_id
		ORDER BY sp.session_id, sp.position, p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query session players: %w", err)
	}
	defer playerRows.Close()

	for playerRows.Next() {
		var sessionID int64
		var name string
		if err := playerRows.Scan(&sessionID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan session player: %w", err)
		}
		if sess, ok := byID[sessionID]; ok {
			sess.Players = append(sess.Players, name)
		}
	}

	return sessions, playerRows.Err()
}

// UpdateSession replaces a session's version and notes
func (s *Store) UpdateSession(id int64, version, notes string) error {
	result, err := s.db.Exec(`
		UPDATE sessions SET version = ?, notes = ? WHERE id = ?
	`, util.NormalizeName(version), notes, id)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n == 0 {
		return util.NotFoundf("session %d", id)
	}
	return nil
}

// DeleteSession removes a session together with its actions, their
// participants and tags, and its player links
func (s *Store) DeleteSession(id int64) error {
	return s.Transaction(func(tx *sql.Tx) error {
		if err := sessionExists(tx, id); err != nil {
			return err
		}

		statements := []string{
			`DELETE FROM action_tags WHERE action_id IN (SELECT id FROM actions WHERE session_id = ?)`,
			`DELETE FROM action_participants WHERE action_id IN (SELECT id FROM actions WHERE session_id = ?)`,
			`DELETE FROM actions WHERE session_id = ?`,
			`DELETE FROM session_players WHERE session_id = ?`,
			`DELETE FROM sessions WHERE id = ?`,
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(stmt, id); err != nil {
				return fmt.Errorf("failed to delete session %d: %w", id, err)
			}
		}
		return nil
	})
}

// Versions returns the distinct session versions in ascending order
func (s *Store) Versions() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT version FROM sessions ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}

	return versions, rows.Err()
}

// CountSessions returns the number of sessions
func (s *Store) CountSessions() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// sessionExists returns ErrNotFound when the session is missing
func sessionExists(q querier, id int64) error {
	var one int
	err := q.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&one)
	if isNoRows(err) {
		return util.NotFoundf("session %d", id)
	}
	if err != nil {
		return fmt.Errorf("failed to look up session: %w", err)
	}
	return nil
}
