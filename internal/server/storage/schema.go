package storage

import "time"

// UserRecord represents a user account in the database
type UserRecord struct {
	UserID       string     `db:"user_id"`
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

// SessionRecord is the single live session of a user
type SessionRecord struct {
	SessionID string    `db:"session_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// GameRecord is one round of a game; every reset starts a new round
type GameRecord struct {
	GameID        string     `db:"game_id"`
	Round         int        `db:"round"`
	InitialFEN    string     `db:"initial_fen"`
	WhitePlayerID string     `db:"white_player_id"`
	Seed          int64      `db:"seed"`
	StartTimeUTC  time.Time  `db:"start_time_utc"`
	Result        string     `db:"result"` // empty while in progress
	EndTimeUTC    *time.Time `db:"end_time_utc"`
}

// MoveRecord is one ply of a round
type MoveRecord struct {
	MoveID       int64     `db:"move_id"`
	GameID       string    `db:"game_id"`
	Round        int       `db:"round"`
	MoveNumber   int       `db:"move_number"`
	Move         string    `db:"move"`
	FENAfterMove string    `db:"fen_after_move"`
	PlayerColor  string    `db:"player_color"`
	Tier         string    `db:"tier"` // planner tier, empty for White
	MoveTimeUTC  time.Time `db:"move_time_utc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id TEXT PRIMARY KEY,
	username TEXT UNIQUE NOT NULL COLLATE NOCASE,
	email TEXT COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_unique ON users(email) WHERE email IS NOT NULL AND email != '';

CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);

CREATE TABLE IF NOT EXISTS games (
	game_id TEXT NOT NULL,
	round INTEGER NOT NULL DEFAULT 0,
	initial_fen TEXT NOT NULL,
	white_player_id TEXT NOT NULL,
	seed INTEGER NOT NULL,
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	result TEXT NOT NULL DEFAULT '',
	end_time_utc DATETIME,
	PRIMARY KEY (game_id, round)
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id TEXT NOT NULL,
	round INTEGER NOT NULL,
	move_number INTEGER NOT NULL,
	move TEXT NOT NULL,
	fen_after_move TEXT NOT NULL,
	player_color TEXT NOT NULL CHECK(player_color IN ('w', 'b')),
	tier TEXT NOT NULL DEFAULT '',
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id, round) REFERENCES games(game_id, round) ON DELETE CASCADE,
	UNIQUE(game_id, round, move_number)
);

CREATE INDEX IF NOT EXISTS idx_moves_game ON moves(game_id, round);
CREATE INDEX IF NOT EXISTS idx_games_white_player ON games(white_player_id);
`
