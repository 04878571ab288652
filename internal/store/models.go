package store

// Player is a human taking part in playtest sessions
type Player struct {
	ID   int64
	Name string
}

// Session is one playtest game
type Session struct {
	ID      int64
	Date    string // YYYY-MM-DD
	Version string
	Notes   string
	Players []string // in the order they were named
}

// NewSession is the input to AddSession
type NewSession struct {
	Version string `validate:"max=128"`
	Player1 string `validate:"required,max=128"`
	Player2 string `validate:"required,max=128,nefield=Player1"`
	Notes   string
	// Date defaults to today when empty
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

// Action is a fully hydrated entry of a session's action log
type Action struct {
	ID        int64
	SessionID int64
	Player    string
	Type      string
	Notes     string
	Position  int
	Primary   string // empty when the action has no primary participant
	Secondary []string
	Tags      []string
}

// NewAction is the input to AddAction
type NewAction struct {
	SessionID int64  `validate:"gt=0"`
	Player    string `validate:"required"`
	Type      string `validate:"required,actiontype"`
	Notes     string
	Primary   string
	Secondary []string
	Tags      []string
}

// ActionEdit replaces everything but the player and position of an action
type ActionEdit struct {
	Type      string `validate:"required,actiontype"`
	Notes     string
	Primary   string
	Secondary []string
	Tags      []string
}

// Tag is an interned label with the number of actions carrying it
type Tag struct {
	ID   int64
	Name string
	Uses int
}
