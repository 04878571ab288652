package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/franz/playtest-history/internal/search"
	"github.com/franz/playtest-history/internal/store"
	"github.com/franz/playtest-history/internal/turn"
)

// LogRow is one action as displayed in a session log
type LogRow struct {
	ActionID     int64
	Turn         int
	Player       string
	Type         string
	Participants string
	Tags         string
	Notes        string
}

// SessionLog is a session's actions annotated with turn numbers
type SessionLog struct {
	Session *store.Session
	Rows    []LogRow
	Turns   int
}

// SessionReport is the Markdown summary of one session
type SessionReport struct {
	GeneratedAt  time.Time
	Log          *SessionLog
	ByType       []search.Count
	ByPlayer     []search.Count
	DatabasePath string
	EventLogPath string
}

// BuildSessionLog numbers the turns of actions, which must be in sequence order
func BuildSessionLog(sess *store.Session, actions []*store.Action, c turn.Classifier) *SessionLog {
	steps := make([]turn.Step, len(actions))
	for i, a := range actions {
		steps[i] = turn.Step{ID: a.ID, Player: a.Player, Type: a.Type}
	}
	turns := turn.Compute(steps, c)

	log := &SessionLog{Session: sess, Rows: make([]LogRow, 0, len(actions))}
	for _, a := range actions {
		row := LogRow{
			ActionID:     a.ID,
			Turn:         turns[a.ID],
			Player:       a.Player,
			Type:         a.Type,
			Participants: FormatParticipants(a.Primary, a.Secondary),
			Tags:         strings.Join(a.Tags, ", "),
			Notes:        a.Notes,
		}
		if row.Turn > log.Turns {
			log.Turns = row.Turn
		}
		log.Rows = append(log.Rows, row)
	}
	return log
}

// FormatParticipants renders "primary → s1, s2", omitting the arrow when
// either side is empty
func FormatParticipants(primary string, secondary []string) string {
	out := primary
	if len(secondary) > 0 {
		if out != "" {
			out += " → "
		}
		out += strings.Join(secondary, ", ")
	}
	return out
}

// WriteSessionLog renders the log as an aligned table
func WriteSessionLog(w io.Writer, log *SessionLog) error {
	sess := log.Session
	fmt.Fprintf(w, "Session %d  %s  %s\n", sess.ID, sess.Date, versionLabel(sess.Version))
	fmt.Fprintf(w, "Players: %s\n", strings.Join(sess.Players, ", "))
	if sess.Notes != "" {
		fmt.Fprintf(w, "Notes: %s\n", sess.Notes)
	}
	fmt.Fprintln(w)

	if len(log.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No actions logged.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTURN\tPLAYER\tTYPE\tPARTICIPANTS\tTAGS\tNOTES")
	for _, r := range log.Rows {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ActionID, r.Turn, r.Player, r.Type, r.Participants, r.Tags, r.Notes)
	}
	return tw.Flush()
}

// WriteSearchResult renders the total followed by one line per breakdown,
// in the order dims were requested
func WriteSearchResult(w io.Writer, res *search.Result, dims []search.Dimension) error {
	var out strings.Builder
	out.WriteString(fmt.Sprintf("Total matching actions: %d\n\n", res.Total))

	for _, d := range dims {
		counts, ok := res.Breakdowns[d]
		if !ok {
			continue
		}
		parts := make([]string, len(counts))
		for i, c := range counts {
			parts[i] = fmt.Sprintf("%s(%d)", c.Value, c.Count)
		}
		out.WriteString(fmt.Sprintf("By %s: %s\n", d.Label(), strings.Join(parts, ", ")))
	}

	_, err := io.WriteString(w, out.String())
	return err
}

// GenerateSessionReport gathers everything the Markdown report shows for a session
func GenerateSessionReport(db *store.Store, sessionID int64) (*SessionReport, error) {
	sess, err := db.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	actions, err := db.ActionsForSession(sessionID)
	if err != nil {
		return nil, err
	}

	report := &SessionReport{
		GeneratedAt: time.Now(),
		Log:         BuildSessionLog(sess, actions, db.Catalog()),
	}

	byType := make(map[string]int)
	byPlayer := make(map[string]int)
	for _, a := range actions {
		byType[a.Type]++
		byPlayer[a.Player]++
	}
	report.ByType = sortedCounts(byType)
	report.ByPlayer = sortedCounts(byPlayer)

	return report, nil
}

// sortedCounts orders by count descending, then value ascending
func sortedCounts(m map[string]int) []search.Count {
	counts := make([]search.Count, 0, len(m))
	for v, n := range m {
		counts = append(counts, search.Count{Value: v, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
	return counts
}

// WriteMarkdownReport writes the session report as Markdown
func WriteMarkdownReport(report *SessionReport, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	sess := report.Log.Session
	var md strings.Builder

	// Header
	md.WriteString(fmt.Sprintf("# Playtest Session %d\n\n", sess.ID))
	md.WriteString(fmt.Sprintf("**Generated:** %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05")))
	if report.DatabasePath != "" {
		md.WriteString(fmt.Sprintf("**Database:** `%s`\n\n", report.DatabasePath))
	}
	if report.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", report.EventLogPath))
	}
	md.WriteString("---\n\n")

	// Overview
	md.WriteString("## Overview\n\n")
	md.WriteString("| Field | Value |\n")
	md.WriteString("|-------|-------|\n")
	md.WriteString(fmt.Sprintf("| Date | %s |\n", sess.Date))
	md.WriteString(fmt.Sprintf("| Version | %s |\n", versionLabel(sess.Version)))
	md.WriteString(fmt.Sprintf("| Players | %s |\n", strings.Join(sess.Players, ", ")))
	md.WriteString(fmt.Sprintf("| Actions | %d |\n", len(report.Log.Rows)))
	md.WriteString(fmt.Sprintf("| Turns | %d |\n", report.Log.Turns))
	if sess.Notes != "" {
		md.WriteString(fmt.Sprintf("| Notes | %s |\n", escapeCell(sess.Notes)))
	}
	md.WriteString("\n")

	if len(report.ByPlayer) > 0 {
		md.WriteString("## Actions by Player\n\n")
		writeCountTable(&md, "Player", report.ByPlayer)
	}
	if len(report.ByType) > 0 {
		md.WriteString("## Actions by Type\n\n")
		writeCountTable(&md, "Type", report.ByType)
	}

	// Log
	md.WriteString("## Action Log\n\n")
	if len(report.Log.Rows) == 0 {
		md.WriteString("*No actions logged*\n\n")
	} else {
		md.WriteString("| Turn | Player | Type | Participants | Tags | Notes |\n")
		md.WriteString("|------|--------|------|--------------|------|-------|\n")
		for _, r := range report.Log.Rows {
			md.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
				r.Turn, escapeCell(r.Player), r.Type, escapeCell(r.Participants),
				escapeCell(r.Tags), escapeCell(r.Notes)))
		}
		md.WriteString("\n")
	}

	md.WriteString("---\n\n")
	md.WriteString("*Generated by pth*\n")

	if err := os.WriteFile(outputPath, []byte(md.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func writeCountTable(md *strings.Builder, heading string, counts []search.Count) {
	md.WriteString(fmt.Sprintf("| %s | Count |\n", heading))
	md.WriteString("|--------|-------|\n")
	for _, c := range counts {
		md.WriteString(fmt.Sprintf("| %s | %d |\n", escapeCell(c.Value), c.Count))
	}
	md.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func versionLabel(v string) string {
	if v == "" {
		return "(no version)"
	}
	return v
}
