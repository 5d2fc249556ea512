// internal/database/hands.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/swick/internal/cache"
)

// HandResultsAction is the action type that closes a hand in the stream.
const HandResultsAction = "hand_results"

// BeginTxFunc starts a transaction using the provided pool, calls f with the
// transaction, and commits or rolls back as needed.
func BeginTxFunc(ctx context.Context, pool *pgxpool.Pool, txOptions pgx.TxOptions, f func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx rollback error: %v; original error: %w", rbErr, err)
		}
		return err
	}
	return tx.Commit(ctx)
}

// InsertHandActionTx stores one action record and upserts its hand row. A
// hand_results action marks the hand completed. Replayed records are ignored.
func InsertHandActionTx(ctx context.Context, tx pgx.Tx, rec cache.HandActionRecord) error {
	upsertHandQ := `
		INSERT INTO hands (game_id, hand_number, room_id, status, start_time)
		VALUES ($1, $2, $3, 'in_progress', $4)
		ON CONFLICT (game_id, hand_number) DO NOTHING
	`
	at := time.UnixMilli(rec.Timestamp)
	if _, err := tx.Exec(ctx, upsertHandQ, rec.GameID, rec.HandNumber, rec.RoomID, at); err != nil {
		return fmt.Errorf("upsert hand: %w", err)
	}

	payload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return err
	}
	var actor *uuid.UUID
	if rec.ActorID != uuid.Nil {
		actor = &rec.ActorID
	}
	actionInsertQ := `
		INSERT INTO hand_actions (
			game_id, action_index, hand_number, room_id, actor_id, action_type, action_payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	if _, err := tx.Exec(ctx, actionInsertQ,
		rec.GameID, rec.ActionIndex, rec.HandNumber, rec.RoomID, actor, rec.ActionType, payload, at,
	); err != nil {
		return fmt.Errorf("insert action %d: %w", rec.ActionIndex, err)
	}

	if rec.ActionType == HandResultsAction {
		finalizeQ := `
			UPDATE hands
			SET status = 'completed', end_time = $3
			WHERE game_id = $1 AND hand_number = $2 AND status = 'in_progress'
		`
		if _, err := tx.Exec(ctx, finalizeQ, rec.GameID, rec.HandNumber, at); err != nil {
			return fmt.Errorf("finalize hand: %w", err)
		}
	}
	return nil
}

// MarkGameAbandonedTx closes every unfinished hand of a game.
func MarkGameAbandonedTx(ctx context.Context, tx pgx.Tx, gameID uuid.UUID) (int64, error) {
	q := `
		UPDATE hands
		SET status = 'abandoned', end_time = NOW()
		WHERE game_id = $1 AND status = 'in_progress'
	`
	tag, err := tx.Exec(ctx, q, gameID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
