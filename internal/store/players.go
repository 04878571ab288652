package store

import (
	"database/sql"
	"fmt"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// ensurePlayer returns the id of the named player, creating it on first use
func ensurePlayer(q querier, name string) (int64, error) {
	if _, err := q.Exec(`INSERT INTO players (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return 0, fmt.Errorf("failed to insert player: %w", err)
	}

	var id int64
	if err := q.QueryRow(`SELECT id FROM players WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get player ID: %w", err)
	}
	return id, nil
}

// GetSessionPlayers returns the players of a session in the order they were named
func (s *Store) GetSessionPlayers(sessionID int64) ([]Player, error) {
	if err := sessionExists(s.db, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT p.id, p.name
		FROM players p
		JOIN session_players sp ON sp.player_id = p.id
		WHERE sp.session_id = ?
		ORDER BY sp.position, p.id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}

	return players, rows.Err()
}

// sessionPlayerID resolves a player name within a session.
// It returns 0 when the name is not one of the session's players.
func sessionPlayerID(q querier, sessionID int64, name string) (int64, error) {
	var id int64
	err := q.QueryRow(`
		SELECT p.id
		FROM players p
		JOIN session_players sp ON sp.player_id = p.id
		WHERE sp.session_id = ? AND p.name = ?
	`, sessionID, name).Scan(&id)
	if isNoRows(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up player: %w", err)
	}
	return id, nil
}
