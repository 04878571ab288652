// Package archive moves sessions between databases as YAML documents.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"

	"github.com/franz/playtest-history/internal/store"
	"github.com/franz/playtest-history/internal/util"
)

// FormatVersion is written to every exported document
const FormatVersion = 1

// Document is the on-disk archive. Database ids are not carried over.
type Document struct {
	Format   int             `yaml:"format"`
	Sessions []SessionRecord `yaml:"sessions"`
}

// SessionRecord is one exported session with its action log in order
type SessionRecord struct {
	Date    string         `yaml:"date"`
	Version string         `yaml:"version,omitempty"`
	Notes   string         `yaml:"notes,omitempty"`
	Players []string       `yaml:"players"`
	Actions []ActionRecord `yaml:"actions,omitempty"`
}

// ActionRecord is one exported action
type ActionRecord struct {
	Player    string   `yaml:"player"`
	Type      string   `yaml:"type"`
	Notes     string   `yaml:"notes,omitempty"`
	Primary   string   `yaml:"primary,omitempty"`
	Secondary []string `yaml:"secondary,omitempty"`
	Tags      []string `yaml:"tags,omitempty"`
}

// ImportOptions controls Import
type ImportOptions struct {
	// Progress receives a progress bar when non-nil
	Progress io.Writer
}

// Export builds a document from the given sessions, or from every session
// (oldest first) when ids is empty
func Export(db *store.Store, ids []int64) (*Document, error) {
	var sessions []*store.Session
	if len(ids) == 0 {
		all, err := db.ListSessions()
		if err != nil {
			return nil, err
		}
		for i := len(all) - 1; i >= 0; i-- {
			sessions = append(sessions, all[i])
		}
	} else {
		for _, id := range ids {
			sess, err := db.GetSession(id)
			if err != nil {
				return nil, err
			}
			sessions = append(sessions, sess)
		}
	}

	doc := &Document{Format: FormatVersion, Sessions: make([]SessionRecord, 0, len(sessions))}
	for _, sess := range sessions {
		actions, err := db.ActionsForSession(sess.ID)
		if err != nil {
			return nil, err
		}

		rec := SessionRecord{
			Date:    sess.Date,
			Version: sess.Version,
			Notes:   sess.Notes,
			Players: sess.Players,
		}
		for _, a := range actions {
			rec.Actions = append(rec.Actions, ActionRecord{
				Player:    a.Player,
				Type:      a.Type,
				Notes:     a.Notes,
				Primary:   a.Primary,
				Secondary: a.Secondary,
				Tags:      a.Tags,
			})
		}
		doc.Sessions = append(doc.Sessions, rec)
	}

	util.DebugLog("Exported %d sessions", len(doc.Sessions))
	return doc, nil
}

// Import replays every session through the store so all validation applies.
// Each session is written in one transaction, so a session with a failing
// action leaves nothing behind; sessions imported before it are kept.
// Returns the new session ids.
func Import(db *store.Store, doc *Document, opts ImportOptions) ([]int64, error) {
	if doc.Format > FormatVersion {
		return nil, util.Validationf("archive format %d is newer than supported format %d", doc.Format, FormatVersion)
	}

	total := 0
	for _, rec := range doc.Sessions {
		total += len(rec.Actions)
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("Importing"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("actions"),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	ids := make([]int64, 0, len(doc.Sessions))
	for i, rec := range doc.Sessions {
		id, err := importSession(db, rec, bar)
		if err != nil {
			return ids, fmt.Errorf("session %d of %d: %w", i+1, len(doc.Sessions), err)
		}
		ids = append(ids, id)
	}

	if bar != nil {
		bar.Finish()
	}
	return ids, nil
}

func importSession(db *store.Store, rec SessionRecord, bar *progressbar.ProgressBar) (int64, error) {
	if len(rec.Players) != 2 {
		return 0, util.Validationf("expected 2 players, got %d", len(rec.Players))
	}

	log := make([]store.NewAction, 0, len(rec.Actions))
	for _, a := range rec.Actions {
		log = append(log, store.NewAction{
			Player:    a.Player,
			Type:      a.Type,
			Notes:     a.Notes,
			Primary:   a.Primary,
			Secondary: a.Secondary,
			Tags:      a.Tags,
		})
	}

	id, err := db.ImportSession(store.NewSession{
		Date:    rec.Date,
		Version: rec.Version,
		Notes:   rec.Notes,
		Player1: rec.Players[0],
		Player2: rec.Players[1],
	}, log)
	if err != nil {
		return 0, err
	}

	if bar != nil {
		bar.Add(len(log))
	}
	return id, nil
}

// Write encodes doc as YAML
func Write(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	return enc.Close()
}

// Read decodes a YAML archive, rejecting unknown fields
func Read(r io.Reader) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return &Document{Format: FormatVersion}, nil
		}
		return nil, util.Validationf("failed to parse archive: %v", err)
	}
	return &doc, nil
}

// Save writes doc to path
func Save(path string, doc *Document) error {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}

// Load reads the archive at path
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return Read(bytes.NewReader(data))
}
