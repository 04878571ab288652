package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/franz/playtest-history/internal/actions"
	"github.com/franz/playtest-history/internal/search"
	"github.com/franz/playtest-history/internal/store"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func sampleLog() *SessionLog {
	sess := &store.Session{ID: 4, Date: "2024-03-02", Version: "v1.2", Players: []string{"Ann", "Ben"}}
	acts := []*store.Action{
		{ID: 11, Player: "Ann", Type: "Deploy", Secondary: []string{"A1"}},
		{ID: 12, Player: "Ann", Type: "Advance", Primary: "Tank 1", Secondary: []string{"B2"}, Tags: []string{"flank"}, Notes: "first move"},
		{ID: 13, Player: "Ben", Type: "Salvo", Primary: "Battery", Secondary: []string{"Tank 1", "Tank 2"}, Tags: []string{"long range", "hit"}},
		{ID: 14, Player: "Ann", Type: "Check Shot", Notes: "reaction"},
		{ID: 15, Player: "Ann", Type: "Skip"},
	}
	return BuildSessionLog(sess, acts, actions.Default())
}

func TestBuildSessionLog(t *testing.T) {
	log := sampleLog()

	if len(log.Rows) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(log.Rows))
	}

	wantTurns := []int{1, 1, 2, 2, 3}
	for i, row := range log.Rows {
		if row.Turn != wantTurns[i] {
			t.Errorf("Row %d: expected turn %d, got %d", i, wantTurns[i], row.Turn)
		}
	}
	if log.Turns != 3 {
		t.Errorf("Expected 3 turns, got %d", log.Turns)
	}
	if log.Rows[2].Participants != "Battery → Tank 1, Tank 2" {
		t.Errorf("Unexpected participants: %q", log.Rows[2].Participants)
	}
	if log.Rows[2].Tags != "long range, hit" {
		t.Errorf("Unexpected tags: %q", log.Rows[2].Tags)
	}
}

func TestFormatParticipants(t *testing.T) {
	tests := []struct {
		primary   string
		secondary []string
		want      string
	}{
		{"", nil, ""},
		{"Tank 1", nil, "Tank 1"},
		{"", []string{"A1", "B2"}, "A1, B2"},
		{"Tank 1", []string{"A1"}, "Tank 1 → A1"},
	}
	for _, tt := range tests {
		if got := FormatParticipants(tt.primary, tt.secondary); got != tt.want {
			t.Errorf("FormatParticipants(%q, %v) = %q, want %q", tt.primary, tt.secondary, got, tt.want)
		}
	}
}

func TestWriteSessionLog(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSessionLog(&buf, sampleLog()); err != nil {
		t.Fatalf("WriteSessionLog failed: %v", err)
	}
	newGoldie(t).Assert(t, "session_log", buf.Bytes())
}

func TestWriteSessionLogEmpty(t *testing.T) {
	sess := &store.Session{ID: 7, Date: "2024-05-01", Notes: "aborted", Players: []string{"Cat", "Dan"}}

	var buf bytes.Buffer
	if err := WriteSessionLog(&buf, BuildSessionLog(sess, nil, actions.Default())); err != nil {
		t.Fatalf("WriteSessionLog failed: %v", err)
	}
	newGoldie(t).Assert(t, "session_log_empty", buf.Bytes())
}

func TestWriteSearchResult(t *testing.T) {
	res := &search.Result{
		Total: 5,
		Breakdowns: map[search.Dimension][]search.Count{
			search.ByVersion: {{Value: "v2", Count: 3}, {Value: "v1", Count: 2}},
			search.ByType:    {},
			search.ByTag:     {{Value: "hit", Count: 2}, {Value: "flank", Count: 1}},
		},
	}

	var buf bytes.Buffer
	dims := []search.Dimension{search.ByVersion, search.ByType, search.ByTag, search.ByPrimary}
	if err := WriteSearchResult(&buf, res, dims); err != nil {
		t.Fatalf("WriteSearchResult failed: %v", err)
	}
	newGoldie(t).Assert(t, "search_result", buf.Bytes())
}

func TestGenerateSessionReport(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	sessionID := setupTestData(t, db)

	report, err := GenerateSessionReport(db, sessionID)
	if err != nil {
		t.Fatalf("GenerateSessionReport failed: %v", err)
	}

	if report.GeneratedAt.IsZero() {
		t.Error("Expected GeneratedAt to be set")
	}
	if len(report.Log.Rows) != 4 {
		t.Errorf("Expected 4 rows, got %d", len(report.Log.Rows))
	}
	if report.Log.Turns != 3 {
		t.Errorf("Expected 3 turns, got %d", report.Log.Turns)
	}

	wantPlayers := []search.Count{{Value: "Ann", Count: 3}, {Value: "Ben", Count: 1}}
	if len(report.ByPlayer) != len(wantPlayers) {
		t.Fatalf("Expected %d player rows, got %d", len(wantPlayers), len(report.ByPlayer))
	}
	for i, want := range wantPlayers {
		if report.ByPlayer[i] != want {
			t.Errorf("ByPlayer[%d] = %+v, want %+v", i, report.ByPlayer[i], want)
		}
	}

	// Move(2) first, then ties broken alphabetically
	wantTypes := []string{"Move", "Deploy", "Salvo"}
	for i, want := range wantTypes {
		if report.ByType[i].Value != want {
			t.Errorf("ByType[%d] = %s, want %s", i, report.ByType[i].Value, want)
		}
	}
}

func TestGenerateSessionReportMissingSession(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := GenerateSessionReport(db, 99); err == nil {
		t.Error("Expected error for missing session")
	}
}

func TestWriteMarkdownReport(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "reports", "session-4.md")

	report := &SessionReport{
		GeneratedAt:  time.Date(2024, 3, 2, 18, 30, 0, 0, time.UTC),
		Log:          sampleLog(),
		ByType:       []search.Count{{Value: "Advance", Count: 1}},
		ByPlayer:     []search.Count{{Value: "Ann", Count: 4}, {Value: "Ben", Count: 1}},
		DatabasePath: "/test/pth.db",
		EventLogPath: "/test/events.jsonl",
	}

	if err := WriteMarkdownReport(report, outputPath); err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	md := string(content)

	expected := []string{
		"# Playtest Session 4",
		"**Generated:** 2024-03-02 18:30:00",
		"**Database:** `/test/pth.db`",
		"**Event Log:** `/test/events.jsonl`",
		"| Version | v1.2 |",
		"| Players | Ann, Ben |",
		"| Actions | 5 |",
		"| Turns | 3 |",
		"## Actions by Player",
		"| Ann | 4 |",
		"## Actions by Type",
		"## Action Log",
		"| 2 | Ben | Salvo | Battery → Tank 1, Tank 2 | long range, hit |  |",
		"| 2 | Ann | Check Shot |  |  | reaction |",
	}
	for _, s := range expected {
		if !strings.Contains(md, s) {
			t.Errorf("Report missing %q", s)
		}
	}
}

func TestWriteMarkdownReportEscapesPipes(t *testing.T) {
	sess := &store.Session{ID: 1, Date: "2024-01-01", Notes: "a|b", Players: []string{"Ann", "Ben"}}
	report := &SessionReport{
		GeneratedAt: time.Now(),
		Log:         BuildSessionLog(sess, nil, actions.Default()),
	}

	outputPath := filepath.Join(t.TempDir(), "session-1.md")
	if err := WriteMarkdownReport(report, outputPath); err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}

	content, _ := os.ReadFile(outputPath)
	md := string(content)
	if !strings.Contains(md, `| Notes | a\|b |`) {
		t.Error("Expected pipe in notes to be escaped")
	}
	if !strings.Contains(md, "*No actions logged*") {
		t.Error("Expected empty log marker")
	}
	if !strings.Contains(md, "| Version | (no version) |") {
		t.Error("Expected placeholder for missing version")
	}
}

// setupTestData logs Ann: Deploy, Move / Ben: Salvo / Ann: Move
func setupTestData(t *testing.T, db *store.Store) int64 {
	t.Helper()

	sessionID, err := db.AddSession(store.NewSession{Version: "v1", Player1: "Ann", Player2: "Ben", Date: "2024-03-02"})
	if err != nil {
		t.Fatalf("AddSession failed: %v", err)
	}

	steps := []store.NewAction{
		{Player: "Ann", Type: "Deploy", Secondary: []string{"a1"}},
		{Player: "Ann", Type: "Move", Primary: "Tank 1", Secondary: []string{"b2"}},
		{Player: "Ben", Type: "Salvo", Primary: "Battery", Secondary: []string{"Tank 1"}},
		{Player: "Ann", Type: "Move", Primary: "Tank 1", Secondary: []string{"c3"}},
	}
	for _, step := range steps {
		step.SessionID = sessionID
		if _, err := db.AddAction(step); err != nil {
			t.Fatalf("AddAction failed: %v", err)
		}
	}

	return sessionID
}
