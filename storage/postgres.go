// Package storage is the persistence collaborator: a Postgres repository
// for games and rounds. Seat arrays live as jsonb in the database and are
// normalized to fixed-size arrays right here at the boundary.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Orbasker/Whist/domain"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

const gameColumns = `id, players, scores, current_round, status, game_mode,
	owner_id, name, player_user_ids, is_shared, share_code, created_at, updated_at`

func (r *PostgresRepo) CreateGame(ctx context.Context, g domain.Game) (domain.Game, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO games (players, scores, current_round, status, game_mode, owner_id, name, player_user_ids, is_shared, share_code)
		VALUES ($1::jsonb, $2::jsonb, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)
		RETURNING `+gameColumns,
		jsonText(g.Players), jsonText(g.Scores), g.CurrentRound, g.Status, g.GameMode,
		g.OwnerID, g.Name, jsonText(g.PlayerUserIDs), g.IsShared, g.ShareCode,
	)
	created, err := scanGame(row)
	if err != nil {
		return domain.Game{}, mapGameError(err)
	}
	return created, nil
}

func (r *PostgresRepo) GetGame(ctx context.Context, id string) (domain.Game, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	g, err := scanGame(row)
	if err != nil {
		return domain.Game{}, mapGameError(err)
	}
	return g, nil
}

func (r *PostgresRepo) GetGameByShareCode(ctx context.Context, code string) (domain.Game, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE share_code = $1 AND is_shared`, code)
	g, err := scanGame(row)
	if err != nil {
		return domain.Game{}, mapGameError(err)
	}
	return g, nil
}

func (r *PostgresRepo) ListGamesByUser(ctx context.Context, userID string) ([]domain.Game, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE owner_id = $1 OR player_user_ids ? $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, mapGameError(err)
	}
	defer rows.Close()

	games := []domain.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, mapGameError(err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (r *PostgresRepo) UpdateGame(ctx context.Context, g domain.Game) (domain.Game, error) {
	updated, err := updateGame(ctx, r.pool, g)
	if err != nil {
		return domain.Game{}, mapGameError(err)
	}
	return updated, nil
}

// DeleteGame removes the game; the rounds table cascades on the foreign key
// so the delete is all or nothing.
func (r *PostgresRepo) DeleteGame(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return mapGameError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

// CommitRound persists a round and its game's advanced state inside one
// transaction, so a failure on either side rolls both back.
func (r *PostgresRepo) CommitRound(ctx context.Context, round domain.Round, g domain.Game) (domain.Round, domain.Game, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Round{}, domain.Game{}, mapGameError(err)
	}
	defer tx.Rollback(ctx)

	saved, err := insertRound(ctx, tx, round)
	if err != nil {
		return domain.Round{}, domain.Game{}, mapGameError(err)
	}
	updated, err := updateGame(ctx, tx, g)
	if err != nil {
		return domain.Round{}, domain.Game{}, mapGameError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Round{}, domain.Game{}, mapGameError(err)
	}
	return saved, updated, nil
}

func (r *PostgresRepo) GetRoundsByGame(ctx context.Context, gameID string) ([]domain.Round, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, game_id, round_number, bids, tricks, scores, round_mode, trump_suit, created_by, created_at
		FROM rounds WHERE game_id = $1
		ORDER BY round_number ASC, id ASC`, gameID)
	if err != nil {
		return nil, mapGameError(err)
	}
	defer rows.Close()

	rounds := []domain.Round{}
	for rows.Next() {
		var (
			round                         domain.Round
			bidsRaw, tricksRaw, scoresRaw []byte
		)
		if err := rows.Scan(&round.ID, &round.GameID, &round.RoundNumber, &bidsRaw, &tricksRaw,
			&scoresRaw, &round.RoundMode, &round.TrumpSuit, &round.CreatedBy, &round.CreatedAt); err != nil {
			return nil, mapGameError(err)
		}
		if err := unmarshalAll(map[*[domain.Seats]int][]byte{
			&round.Bids: bidsRaw, &round.Tricks: tricksRaw, &round.Scores: scoresRaw,
		}); err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

// querier is the slice of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same statements serve both the standalone and the transactional paths.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertRound(ctx context.Context, q querier, round domain.Round) (domain.Round, error) {
	row := q.QueryRow(ctx, `
		INSERT INTO rounds (game_id, round_number, bids, tricks, scores, round_mode, trump_suit, created_by)
		VALUES ($1, $2, $3::jsonb, $4::jsonb, $5::jsonb, $6, $7, $8)
		RETURNING id, created_at`,
		round.GameID, round.RoundNumber, jsonText(round.Bids), jsonText(round.Tricks),
		jsonText(round.Scores), round.RoundMode, round.TrumpSuit, round.CreatedBy,
	)
	if err := row.Scan(&round.ID, &round.CreatedAt); err != nil {
		return domain.Round{}, err
	}
	return round, nil
}

func updateGame(ctx context.Context, q querier, g domain.Game) (domain.Game, error) {
	row := q.QueryRow(ctx, `
		UPDATE games
		SET players = $2::jsonb, scores = $3::jsonb, current_round = $4, status = $5,
		    name = $6, player_user_ids = $7::jsonb, is_shared = $8, share_code = $9,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+gameColumns,
		g.ID, jsonText(g.Players), jsonText(g.Scores), g.CurrentRound, g.Status,
		g.Name, jsonText(g.PlayerUserIDs), g.IsShared, g.ShareCode,
	)
	return scanGame(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (domain.Game, error) {
	var (
		g                     domain.Game
		playersRaw, scoresRaw []byte
		playerUserIDsRaw      []byte
	)
	err := row.Scan(&g.ID, &playersRaw, &scoresRaw, &g.CurrentRound, &g.Status, &g.GameMode,
		&g.OwnerID, &g.Name, &playerUserIDsRaw, &g.IsShared, &g.ShareCode, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return domain.Game{}, err
	}

	if err := json.Unmarshal(playersRaw, &g.Players); err != nil {
		return domain.Game{}, fmt.Errorf("%w: decoding players: %w", domain.UnexpectedDatabaseError, err)
	}
	if err := json.Unmarshal(scoresRaw, &g.Scores); err != nil {
		return domain.Game{}, fmt.Errorf("%w: decoding scores: %w", domain.UnexpectedDatabaseError, err)
	}
	if playerUserIDsRaw != nil {
		if err := json.Unmarshal(playerUserIDsRaw, &g.PlayerUserIDs); err != nil {
			return domain.Game{}, fmt.Errorf("%w: decoding player_user_ids: %w", domain.UnexpectedDatabaseError, err)
		}
	}
	return g, nil
}

func unmarshalAll(fields map[*[domain.Seats]int][]byte) error {
	for dst, raw := range fields {
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%w: decoding round array: %w", domain.UnexpectedDatabaseError, err)
		}
	}
	return nil
}

// jsonText renders a value as JSON for a $n::jsonb parameter. The inputs are
// plain arrays, so marshalling cannot fail.
func jsonText(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func mapGameError(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrGameNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 22P02: the id was not a well-formed uuid, which callers see the
		// same as a missing game.
		if pgErr.Code == "22P02" {
			return domain.ErrGameNotFound
		}
	}
	return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
}
