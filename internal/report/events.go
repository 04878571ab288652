package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventSessionAdded   EventType = "session_added"
	EventSessionUpdated EventType = "session_updated"
	EventSessionDeleted EventType = "session_deleted"
	EventActionAdded    EventType = "action_added"
	EventActionUpdated  EventType = "action_updated"
	EventActionDeleted  EventType = "action_deleted"
	EventImport         EventType = "import"
	EventError          EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// ParseLevel maps a config value onto an EventLevel, defaulting to info
func ParseLevel(s string) EventLevel {
	if _, ok := levelPriority[EventLevel(s)]; ok {
		return EventLevel(s)
	}
	return LevelInfo
}

// Event represents one change made to the store
type Event struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"ts"`
	Level      EventLevel        `json:"level"`
	Event      EventType         `json:"event"`
	SessionID  int64             `json:"session_id,omitempty"`
	ActionID   int64             `json:"action_id,omitempty"`
	Player     string            `json:"player,omitempty"`
	ActionType string            `json:"action_type,omitempty"`
	Version    string            `json:"version,omitempty"`
	Error      string            `json:"error,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Generate filename with timestamp
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s.jsonl", timestamp)
	path := filepath.Join(outputDir, filename)

	// Append so two commands in the same second share a file
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	// Filter by minimum level
	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil // Skip events below minimum level
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogSessionAdded logs a new session
func (l *EventLogger) LogSessionAdded(sessionID int64, version string, players []string) error {
	extra := map[string]string{}
	for i, p := range players {
		extra[fmt.Sprintf("player%d", i+1)] = p
	}
	return l.Log(&Event{
		Level:     LevelInfo,
		Event:     EventSessionAdded,
		SessionID: sessionID,
		Version:   version,
		Extra:     extra,
	})
}

// LogSessionUpdated logs a version/notes change
func (l *EventLogger) LogSessionUpdated(sessionID int64, version string) error {
	return l.Log(&Event{
		Level:     LevelInfo,
		Event:     EventSessionUpdated,
		SessionID: sessionID,
		Version:   version,
	})
}

// LogSessionDeleted logs a session removal and how many actions went with it
func (l *EventLogger) LogSessionDeleted(sessionID int64, actionCount int) error {
	return l.Log(&Event{
		Level:     LevelWarning,
		Event:     EventSessionDeleted,
		SessionID: sessionID,
		Extra: map[string]string{
			"actions": fmt.Sprintf("%d", actionCount),
		},
	})
}

// LogActionAdded logs an appended action
func (l *EventLogger) LogActionAdded(sessionID, actionID int64, player, actionType string) error {
	return l.Log(&Event{
		Level:      LevelInfo,
		Event:      EventActionAdded,
		SessionID:  sessionID,
		ActionID:   actionID,
		Player:     player,
		ActionType: actionType,
	})
}

// LogActionUpdated logs an edited action
func (l *EventLogger) LogActionUpdated(actionID int64, actionType string) error {
	return l.Log(&Event{
		Level:      LevelInfo,
		Event:      EventActionUpdated,
		ActionID:   actionID,
		ActionType: actionType,
	})
}

// LogActionDeleted logs a removed action
func (l *EventLogger) LogActionDeleted(actionID int64) error {
	return l.Log(&Event{
		Level:    LevelWarning,
		Event:    EventActionDeleted,
		ActionID: actionID,
	})
}

// LogImport logs an archive import
func (l *EventLogger) LogImport(source string, sessions, actions int) error {
	return l.Log(&Event{
		Level: LevelInfo,
		Event: EventImport,
		Extra: map[string]string{
			"source":   source,
			"sessions": fmt.Sprintf("%d", sessions),
			"actions":  fmt.Sprintf("%d", actions),
		},
	})
}

// LogError logs a failed operation
func (l *EventLogger) LogError(event EventType, sessionID int64, err error) error {
	return l.Log(&Event{
		Level:     LevelError,
		Event:     event,
		SessionID: sessionID,
		Error:     err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
