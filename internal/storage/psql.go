package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

var _ KV = (*PsqlKV)(nil)

// PsqlKV keeps the storage items in the kv_store table.
type PsqlKV struct {
	db *pgxpool.Pool
}

func NewPsqlKV(db *pgxpool.Pool) *PsqlKV {
	return &PsqlKV{
		db: db,
	}
}

func (p *PsqlKV) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.psql.get")
	defer tracing.EndSpanWithErrCheck(span, &err)

	rows, err := p.db.Query(
		ctx,
		`SELECT item_value FROM kv_store WHERE item_key = $1;`,
		key,
	)
	if err != nil {
		return "", false, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return "", false, err
	}

	if !rows.Next() {
		return "", false, nil
	}

	var value string
	if err := rows.Scan(&value); err != nil {
		return "", false, fmt.Errorf("rows scan: %w", err)
	}
	return value, true, nil
}

func (p *PsqlKV) Set(ctx context.Context, key, value string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.psql.set")
	defer tracing.EndSpanWithErrCheck(span, &err)

	_, err = p.db.Exec(
		ctx,
		`INSERT INTO kv_store (item_key, item_value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (item_key) DO UPDATE SET item_value = EXCLUDED.item_value, updated_at = now();`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (p *PsqlKV) Remove(ctx context.Context, key string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.psql.remove")
	defer tracing.EndSpanWithErrCheck(span, &err)

	if _, err = p.db.Exec(ctx, `DELETE FROM kv_store WHERE item_key = $1;`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
