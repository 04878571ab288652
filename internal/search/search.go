// Package search counts logged actions under a sparse set of filters and
// breaks the matches down by version, type, participant or tag.
package search

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/franz/playtest-history/internal/util"
)

// Dimension is a field matches can be grouped by
type Dimension string

const (
	ByVersion   Dimension = "version"
	ByType      Dimension = "type"
	ByPrimary   Dimension = "primary"
	BySecondary Dimension = "secondary"
	ByTag       Dimension = "tag"
)

// Dimensions lists every dimension in display order
var Dimensions = []Dimension{ByVersion, ByType, ByPrimary, BySecondary, ByTag}

// Label is the heading used when rendering a breakdown
func (d Dimension) Label() string {
	switch d {
	case ByVersion:
		return "Version"
	case ByType:
		return "Type"
	case ByPrimary:
		return "Primary"
	case BySecondary:
		return "Secondary"
	case ByTag:
		return "Tag"
	}
	return string(d)
}

// ParseDimension maps a user-supplied name onto a Dimension
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "version", "versions":
		return ByVersion, nil
	case "type", "types":
		return ByType, nil
	case "primary":
		return ByPrimary, nil
	case "secondary":
		return BySecondary, nil
	case "tag", "tags":
		return ByTag, nil
	}
	return "", util.Validationf("unknown breakdown %q (want version, type, primary, secondary or tag)", s)
}

// Filters narrows a search. Empty fields impose no constraint.
type Filters struct {
	Version   string // exact
	Type      string // exact
	Primary   string // case-insensitive substring
	Secondary string // case-insensitive substring
	Tag       string // case-insensitive substring
}

// Count is one row of a breakdown
type Count struct {
	Value string
	Count int
}

// Result holds the distinct match total and the requested breakdowns
type Result struct {
	Total      int
	Breakdowns map[Dimension][]Count
}

// Querier is satisfied by *sql.DB and *sql.Tx
type Querier interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Engine runs searches against the playtest store
type Engine struct {
	db Querier
}

// New creates a search engine over db
func New(db Querier) *Engine {
	return &Engine{db: db}
}

// Search counts the distinct actions matching f and computes each requested
// breakdown against the same filters. Breakdown rows are ordered by count
// descending, then value ascending.
func (e *Engine) Search(f Filters, dims ...Dimension) (*Result, error) {
	where, args := f.normalized().clauses()

	query := `
		SELECT COUNT(DISTINCT a.id)
		FROM actions a
		JOIN sessions s ON s.id = a.session_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}

	result := &Result{Breakdowns: make(map[Dimension][]Count)}
	if err := e.db.QueryRow(query, args...).Scan(&result.Total); err != nil {
		return nil, fmt.Errorf("failed to count actions: %w", err)
	}

	for _, d := range dims {
		if _, done := result.Breakdowns[d]; done {
			continue
		}
		counts, err := e.breakdown(d, where, args)
		if err != nil {
			return nil, err
		}
		result.Breakdowns[d] = counts
	}

	return result, nil
}

// breakdown groups the filtered actions by one dimension
func (e *Engine) breakdown(d Dimension, where []string, args []interface{}) ([]Count, error) {
	var column, joins string
	conds := append([]string(nil), where...)

	switch d {
	case ByVersion:
		column = "s.version"
	case ByType:
		column = "a.type"
	case ByPrimary:
		column = "ap.name_text"
		joins = "JOIN action_participants ap ON ap.action_id = a.id"
		conds = append([]string{"ap.is_primary = 1"}, conds...)
	case BySecondary:
		column = "ap.name_text"
		joins = "JOIN action_participants ap ON ap.action_id = a.id"
		conds = append([]string{"ap.is_primary = 0"}, conds...)
	case ByTag:
		column = "t.name"
		joins = "JOIN action_tags at ON at.action_id = a.id JOIN tags t ON t.id = at.tag_id"
	default:
		return nil, util.Validationf("unknown breakdown %q", d)
	}

	query := fmt.Sprintf(`
		SELECT %s AS value, COUNT(DISTINCT a.id) AS n
		FROM actions a
		JOIN sessions s ON s.id = a.session_id
		%s`, column, joins)
	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}
	query += `
		GROUP BY value
		ORDER BY n DESC, value ASC`

	rows, err := e.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s breakdown: %w", d, err)
	}
	defer rows.Close()

	counts := []Count{}
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Value, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan %s breakdown: %w", d, err)
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

func (f Filters) normalized() Filters {
	return Filters{
		Version:   util.NormalizeName(f.Version),
		Type:      util.NormalizeName(f.Type),
		Primary:   util.NormalizeName(f.Primary),
		Secondary: util.NormalizeName(f.Secondary),
		Tag:       util.NormalizeName(f.Tag),
	}
}

// clauses builds the shared WHERE conditions. Participant and tag filters use
// correlated EXISTS so an action matches once however many rows qualify.
func (f Filters) clauses() ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if f.Version != "" {
		where = append(where, "s.version = ?")
		args = append(args, f.Version)
	}
	if f.Type != "" {
		where = append(where, "a.type = ?")
		args = append(args, f.Type)
	}
	if f.Primary != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM action_participants fp
			WHERE fp.action_id = a.id AND fp.is_primary = 1
			AND casefold(fp.name_text) LIKE ? ESCAPE '\'
		)`)
		args = append(args, likePattern(f.Primary))
	}
	if f.Secondary != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM action_participants fs
			WHERE fs.action_id = a.id AND fs.is_primary = 0
			AND casefold(fs.name_text) LIKE ? ESCAPE '\'
		)`)
		args = append(args, likePattern(f.Secondary))
	}
	if f.Tag != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM action_tags fat
			JOIN tags ft ON ft.id = fat.tag_id
			WHERE fat.action_id = a.id
			AND casefold(ft.name) LIKE ? ESCAPE '\'
		)`)
		args = append(args, likePattern(f.Tag))
	}

	return where, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern case-folds s and wraps it for substring matching with LIKE
// wildcards escaped. The column side is folded by the casefold function
// every store connection registers (store.FoldFunc).
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(util.FoldCase(s)) + "%"
}
