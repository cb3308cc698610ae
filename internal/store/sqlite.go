package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/mta-tools/wycena/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS special_color_prices (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	name       TEXT NOT NULL,
	name_key   TEXT NOT NULL,
	rarity     TEXT NOT NULL,
	price      INTEGER NOT NULL,
	added_by   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (type, name_key, rarity)
);

CREATE TABLE IF NOT EXISTS vehicles (
	vuid       INTEGER PRIMARY KEY,
	card       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_special_color_prices_type ON special_color_prices(type);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetSpecialColorPrice(ctx context.Context, typ model.SpecialColorType, name, rarity string) (int64, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT price FROM special_color_prices WHERE type = ? AND name_key = ? AND rarity = ?`,
		string(typ), model.NormalizeKey(name), rarity,
	)

	var price int64
	err := row.Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, eris.Wrap(err, "sqlite: get special color price")
	}
	return price, true, nil
}

func (s *SQLiteStore) UpsertSpecialColorPrice(ctx context.Context, rec model.SpecialColorPrice) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.NameKey == "" {
		rec.NameKey = model.NormalizeKey(rec.Name)
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO special_color_prices (id, type, name, name_key, rarity, price, added_by, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (type, name_key, rarity) DO UPDATE SET
		   name = excluded.name, price = excluded.price, added_by = excluded.added_by, updated_at = excluded.updated_at`,
		rec.ID, string(rec.Type), rec.Name, rec.NameKey, rec.Rarity, rec.Price, rec.AddedBy, now,
	)
	return eris.Wrapf(err, "sqlite: upsert special color price %s/%s", rec.Type, rec.NameKey)
}

func (s *SQLiteStore) ListSpecialColorPrices(ctx context.Context, typ model.SpecialColorType) ([]model.SpecialColorPrice, error) {
	query := `SELECT id, type, name, name_key, rarity, price, added_by, updated_at FROM special_color_prices`
	var args []any
	if typ != "" {
		query += ` WHERE type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY type, name_key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list special color prices")
	}
	defer rows.Close()

	var recs []model.SpecialColorPrice
	for rows.Next() {
		var r model.SpecialColorPrice
		var typStr string
		if err := rows.Scan(&r.ID, &typStr, &r.Name, &r.NameKey, &r.Rarity, &r.Price, &r.AddedBy, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan special color price")
		}
		r.Type = model.SpecialColorType(typStr)
		recs = append(recs, r)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list special color prices iterate")
}

func (s *SQLiteStore) GetVehicle(ctx context.Context, vuid int) (*model.VehicleCard, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT card FROM vehicles WHERE vuid = ?`,
		vuid,
	)

	var cardJSON string
	err := row.Scan(&cardJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get vehicle %d", vuid)
	}

	var card model.VehicleCard
	if err := json.Unmarshal([]byte(cardJSON), &card); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal vehicle card")
	}
	return &card, nil
}

func (s *SQLiteStore) UpsertVehicle(ctx context.Context, card *model.VehicleCard) error {
	cardJSON, err := json.Marshal(card)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal vehicle card")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO vehicles (vuid, card, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (vuid) DO UPDATE SET card = excluded.card, updated_at = excluded.updated_at`,
		card.VUID, string(cardJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert vehicle %d", card.VUID)
}
