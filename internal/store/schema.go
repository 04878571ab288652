package store

// Schema v1 - sessions, players and the action log
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS players (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  date TEXT NOT NULL,
  version TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT ''
);

-- Players selectable in a session, in the order they were named
CREATE TABLE IF NOT EXISTS session_players (
  session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  player_id INTEGER NOT NULL REFERENCES players(id),
  position INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (session_id, player_id)
);

-- The action log; sequence_position is the only ordering key
CREATE TABLE IF NOT EXISTS actions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
  player_id INTEGER NOT NULL REFERENCES players(id),
  type TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  sequence_position INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_actions_session_seq ON actions(session_id, sequence_position);
CREATE INDEX IF NOT EXISTS idx_actions_type ON actions(type);

-- In-game entities involved in an action (free text, not players)
CREATE TABLE IF NOT EXISTS action_participants (
  action_id INTEGER NOT NULL REFERENCES actions(id) ON DELETE CASCADE,
  is_primary INTEGER NOT NULL DEFAULT 0,
  name_text TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_action_participants_action ON action_participants(action_id, is_primary);

CREATE TABLE IF NOT EXISTS tags (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS action_tags (
  action_id INTEGER NOT NULL REFERENCES actions(id) ON DELETE CASCADE,
  tag_id INTEGER NOT NULL REFERENCES tags(id),
  PRIMARY KEY (action_id, tag_id)
);
`

// Schema v2 - indexes backing the search filters
const schemaV2 = `
CREATE INDEX IF NOT EXISTS idx_sessions_version ON sessions(version);
CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date);
CREATE INDEX IF NOT EXISTS idx_action_participants_name ON action_participants(name_text);
CREATE INDEX IF NOT EXISTS idx_action_tags_tag ON action_tags(tag_id);
`
