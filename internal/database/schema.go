package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the hand history tables. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS hands (
	game_id     UUID        NOT NULL,
	hand_number INTEGER     NOT NULL,
	room_id     UUID        NOT NULL,
	status      TEXT        NOT NULL DEFAULT 'in_progress',
	start_time  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	end_time    TIMESTAMPTZ,
	PRIMARY KEY (game_id, hand_number)
);

CREATE TABLE IF NOT EXISTS hand_actions (
	game_id        UUID        NOT NULL,
	action_index   INTEGER     NOT NULL,
	hand_number    INTEGER     NOT NULL,
	room_id        UUID        NOT NULL,
	actor_id       UUID,
	action_type    TEXT        NOT NULL,
	action_payload JSONB       NOT NULL DEFAULT '{}'::jsonb,
	created_at     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (game_id, action_index)
);

CREATE INDEX IF NOT EXISTS hand_actions_room_idx ON hand_actions (room_id);
`

// Migrate applies Schema on pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
