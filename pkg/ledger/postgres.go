package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AccelByte/extend-runner-progression/pkg/config"
	"github.com/AccelByte/extend-runner-progression/pkg/domain"
)

// PostgresLedger stores receipts in the claim_receipts table.
type PostgresLedger struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresLedger opens a connection pool and verifies it with a ping.
func NewPostgresLedger(ctx context.Context, cfg *config.PostgresConfig, logger *slog.Logger) (*PostgresLedger, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return NewPostgresLedgerFromPool(pool, logger), nil
}

// NewPostgresLedgerFromPool wraps an existing pool.
func NewPostgresLedgerFromPool(pool *pgxpool.Pool, logger *slog.Logger) *PostgresLedger {
	return &PostgresLedger{pool: pool, logger: logger}
}

// Close closes the connection pool.
func (l *PostgresLedger) Close() {
	l.pool.Close()
}

// RunMigrations creates the receipts table and its index.
func (l *PostgresLedger) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS claim_receipts (
			id UUID PRIMARY KEY,
			player_id VARCHAR(128) NOT NULL,
			source VARCHAR(20) NOT NULL,
			item_id VARCHAR(128) NOT NULL,
			reward JSONB NOT NULL,
			claimed_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_claim_receipts_player ON claim_receipts(player_id, claimed_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := l.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	l.logger.Info("ledger migrations completed")
	return nil
}

func (l *PostgresLedger) Record(ctx context.Context, receipt domain.ClaimReceipt) error {
	reward, err := json.Marshal(receipt.Reward)
	if err != nil {
		return fmt.Errorf("encoding reward: %w", err)
	}

	query := `
		INSERT INTO claim_receipts (id, player_id, source, item_id, reward, claimed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = l.pool.Exec(ctx, query,
		receipt.ID,
		receipt.PlayerID,
		string(receipt.Source),
		receipt.ItemID,
		reward,
		receipt.ClaimedAt,
	)
	if err != nil {
		return fmt.Errorf("recording receipt: %w", err)
	}
	return nil
}

func (l *PostgresLedger) List(ctx context.Context, playerID string, limit int) ([]domain.ClaimReceipt, error) {
	query := `
		SELECT id::text, player_id, source, item_id, reward, claimed_at
		FROM claim_receipts
		WHERE player_id = $1
		ORDER BY claimed_at DESC, id
		LIMIT $2
	`
	rows, err := l.pool.Query(ctx, query, playerID, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	defer rows.Close()

	var receipts []domain.ClaimReceipt
	for rows.Next() {
		var (
			r      domain.ClaimReceipt
			source string
			reward []byte
		)
		if err := rows.Scan(&r.ID, &r.PlayerID, &source, &r.ItemID, &reward, &r.ClaimedAt); err != nil {
			return nil, fmt.Errorf("scanning receipt: %w", err)
		}
		r.Source = domain.ClaimSource(source)
		if err := json.Unmarshal(reward, &r.Reward); err != nil {
			return nil, fmt.Errorf("decoding reward of receipt %s: %w", r.ID, err)
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating receipts: %w", err)
	}
	return receipts, nil
}
