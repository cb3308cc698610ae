package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/mta-tools/wycena/internal/db"
	"github.com/mta-tools/wycena/internal/model"
	"github.com/mta-tools/wycena/internal/resilience"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection.
// Price lookups run on every valuation, so they are worth preparing.
var preparedStatements = map[string]string{
	"get_color_price":    `SELECT price FROM special_color_prices WHERE type = $1 AND name_key = $2 AND rarity = $3`,
	"upsert_color_price": `INSERT INTO special_color_prices (id, type, name, name_key, rarity, price, added_by, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (type, name_key, rarity) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, added_by = EXCLUDED.added_by, updated_at = EXCLUDED.updated_at`,
	"get_vehicle":        `SELECT card FROM vehicles WHERE vuid = $1`,
	"upsert_vehicle":     `INSERT INTO vehicles (vuid, card, updated_at) VALUES ($1, $2, $3) ON CONFLICT (vuid) DO UPDATE SET card = EXCLUDED.card, updated_at = EXCLUDED.updated_at`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	// The database may still be coming up when we are.
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("postgres", "ping")
	if err := resilience.Do(ctx, retryCfg, func(ctx context.Context) error {
		return pool.Ping(ctx)
	}); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS special_color_prices (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	type       TEXT NOT NULL,
	name       TEXT NOT NULL,
	name_key   TEXT NOT NULL,
	rarity     TEXT NOT NULL,
	price      BIGINT NOT NULL,
	added_by   TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (type, name_key, rarity)
);

CREATE TABLE IF NOT EXISTS vehicles (
	vuid       BIGINT PRIMARY KEY,
	card       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_special_color_prices_type ON special_color_prices(type);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetSpecialColorPrice(ctx context.Context, typ model.SpecialColorType, name, rarity string) (int64, bool, error) {
	var price int64
	err := s.pool.QueryRow(ctx,
		`SELECT price FROM special_color_prices WHERE type = $1 AND name_key = $2 AND rarity = $3`,
		string(typ), model.NormalizeKey(name), rarity,
	).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, eris.Wrap(err, "postgres: get special color price")
	}
	return price, true, nil
}

func (s *PostgresStore) UpsertSpecialColorPrice(ctx context.Context, rec model.SpecialColorPrice) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.NameKey == "" {
		rec.NameKey = model.NormalizeKey(rec.Name)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO special_color_prices (id, type, name, name_key, rarity, price, added_by, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (type, name_key, rarity) DO UPDATE SET
		   name = EXCLUDED.name, price = EXCLUDED.price, added_by = EXCLUDED.added_by, updated_at = EXCLUDED.updated_at`,
		rec.ID, string(rec.Type), rec.Name, rec.NameKey, rec.Rarity, rec.Price, rec.AddedBy, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert special color price %s/%s", rec.Type, rec.NameKey)
}

func (s *PostgresStore) ListSpecialColorPrices(ctx context.Context, typ model.SpecialColorType) ([]model.SpecialColorPrice, error) {
	query := `SELECT id, type, name, name_key, rarity, price, added_by, updated_at FROM special_color_prices`
	var args []any
	if typ != "" {
		query += ` WHERE type = $1`
		args = append(args, string(typ))
	}
	query += ` ORDER BY type, name_key`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list special color prices")
	}
	defer rows.Close()

	var recs []model.SpecialColorPrice
	for rows.Next() {
		var r model.SpecialColorPrice
		var typStr string
		if err := rows.Scan(&r.ID, &typStr, &r.Name, &r.NameKey, &r.Rarity, &r.Price, &r.AddedBy, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan special color price")
		}
		r.Type = model.SpecialColorType(typStr)
		recs = append(recs, r)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list special color prices iterate")
}

func (s *PostgresStore) GetVehicle(ctx context.Context, vuid int) (*model.VehicleCard, error) {
	var cardJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT card FROM vehicles WHERE vuid = $1`,
		vuid,
	).Scan(&cardJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get vehicle %d", vuid)
	}

	var card model.VehicleCard
	if err := json.Unmarshal(cardJSON, &card); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal vehicle card")
	}
	return &card, nil
}

func (s *PostgresStore) UpsertVehicle(ctx context.Context, card *model.VehicleCard) error {
	cardJSON, err := json.Marshal(card)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal vehicle card")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO vehicles (vuid, card, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (vuid) DO UPDATE SET card = EXCLUDED.card, updated_at = EXCLUDED.updated_at`,
		card.VUID, cardJSON, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert vehicle %d", card.VUID)
}

// SeedSpecialColorPrices bulk-loads crowd prices, overwriting any rows
// that share a (type, name_key, rarity) key. Used by the price import
// command when migrating from an existing dataset.
func (s *PostgresStore) SeedSpecialColorPrices(ctx context.Context, recs []model.SpecialColorPrice) (int64, error) {
	rows := make([][]any, 0, len(recs))
	now := time.Now().UTC()
	for _, r := range recs {
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.NameKey == "" {
			r.NameKey = model.NormalizeKey(r.Name)
		}
		rows = append(rows, []any{r.ID, string(r.Type), r.Name, r.NameKey, r.Rarity, r.Price, r.AddedBy, now})
	}

	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "special_color_prices",
		Columns:      []string{"id", "type", "name", "name_key", "rarity", "price", "added_by", "updated_at"},
		ConflictKeys: []string{"type", "name_key", "rarity"},
		UpdateCols:   []string{"name", "price", "added_by", "updated_at"},
	}, rows)
}
