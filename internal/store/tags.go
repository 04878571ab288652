package store

import (
	"fmt"

	"github.com/franz/playtest-history/internal/util"
)

// EnsureTag returns the ID of the tag with exactly this name, creating it
// if needed. Names are case-sensitive.
func (s *Store) EnsureTag(name string) (int64, error) {
	name = util.NormalizeName(name)
	if name == "" {
		return 0, util.Validationf("tag name is required")
	}
	return ensureTag(s.db, name)
}

func ensureTag(q querier, name string) (int64, error) {
	if _, err := q.Exec(`INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return 0, fmt.Errorf("failed to insert tag: %w", err)
	}

	var id int64
	if err := q.QueryRow(`SELECT id FROM tags WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get tag ID: %w", err)
	}
	return id, nil
}

// ListTags returns every tag with the number of actions using it, by name
func (s *Store) ListTags() ([]Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, COUNT(at.action_id)
		FROM tags t
		LEFT JOIN action_tags at ON at.tag_id = t.id
		GROUP BY t.id, t.name
		ORDER BY t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Uses); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}
