package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordNewGame queues the start of a game round
func (s *Store) RecordNewGame(record GameRecord) {
	s.enqueue("game record", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO games (
			game_id, round, initial_fen, white_player_id, seed, start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?)`,
			record.GameID, record.Round, record.InitialFEN,
			record.WhitePlayerID, record.Seed, record.StartTimeUTC,
		)
		return err
	})
}

// RecordMove queues one ply
func (s *Store) RecordMove(record MoveRecord) {
	s.enqueue("move record", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO moves (
			game_id, round, move_number, move, fen_after_move, player_color, tier, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			record.GameID, record.Round, record.MoveNumber, record.Move,
			record.FENAfterMove, record.PlayerColor, record.Tier, record.MoveTimeUTC,
		)
		return err
	})
}

// RecordResult queues the final state of a round
func (s *Store) RecordResult(gameID string, round int, result string, at time.Time) {
	s.enqueue("game result", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE games SET result = ?, end_time_utc = ? WHERE game_id = ? AND round = ?`,
			result, at, gameID, round)
		return err
	})
}

// QueryGames lists archived rounds, newest first. Empty or "*" filters match everything.
func (s *Store) QueryGames(gameID, playerID string) ([]GameRecord, error) {
	query := `SELECT game_id, round, initial_fen, white_player_id, seed,
		start_time_utc, result, end_time_utc
	FROM games WHERE 1=1`
	var args []any

	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}
	if playerID != "" && playerID != "*" {
		query += " AND white_player_id = ?"
		args = append(args, playerID)
	}
	query += " ORDER BY start_time_utc DESC, round DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		if err := rows.Scan(
			&g.GameID, &g.Round, &g.InitialFEN, &g.WhitePlayerID, &g.Seed,
			&g.StartTimeUTC, &g.Result, &g.EndTimeUTC,
		); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return games, nil
}

// QueryMoves returns the plies of one round in play order
func (s *Store) QueryMoves(gameID string, round int) ([]MoveRecord, error) {
	rows, err := s.db.Query(`SELECT move_id, game_id, round, move_number, move,
		fen_after_move, player_color, tier, move_time_utc
	FROM moves WHERE game_id = ? AND round = ? ORDER BY move_number`, gameID, round)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(
			&m.MoveID, &m.GameID, &m.Round, &m.MoveNumber, &m.Move,
			&m.FENAfterMove, &m.PlayerColor, &m.Tier, &m.MoveTimeUTC,
		); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}
