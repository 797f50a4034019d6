package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/royal-chronicle/pkg/world"
)

// ErrBadSlot means the slot number is outside 1..MaxSlots.
var ErrBadSlot = fmt.Errorf("save slot out of range")

// MaxSlots is the number of named save slots.
const MaxSlots = 5

const slotSchema = `
CREATE TABLE IF NOT EXISTS saves (
	slot            INTEGER PRIMARY KEY,
	playthrough_id  TEXT NOT NULL,
	day             INTEGER NOT NULL,
	location        TEXT NOT NULL,
	treasury        INTEGER NOT NULL,
	saved_at        TIMESTAMP NOT NULL,
	snapshot        TEXT NOT NULL
);`

// SlotInfo describes one occupied save slot, for the load menu.
type SlotInfo struct {
	Slot          int       `db:"slot" json:"slot"`
	PlaythroughID string    `db:"playthrough_id" json:"playthrough_id"`
	Day           int       `db:"day" json:"day"`
	Location      string    `db:"location" json:"location"`
	Treasury      int       `db:"treasury" json:"treasury"`
	SavedAt       time.Time `db:"saved_at" json:"saved_at"`
}

// SlotStore keeps numbered save slots in a local SQLite file.
type SlotStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSlotStore opens (creating if needed) the save database at path.
func NewSlotStore(path string, logger *slog.Logger) (*SlotStore, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open save database: %w", err)
	}
	if _, err := db.Exec(slotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize save database: %w", err)
	}
	return &SlotStore{db: db, logger: logger}, nil
}

func checkSlot(slot int) error {
	if slot < 1 || slot > MaxSlots {
		return fmt.Errorf("%w: %d", ErrBadSlot, slot)
	}
	return nil
}

// Save writes a snapshot into a slot, overwriting any previous save.
func (s *SlotStore) Save(ctx context.Context, slot int, snap *world.Snapshot) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saves (slot, playthrough_id, day, location, treasury, saved_at, snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			playthrough_id = excluded.playthrough_id,
			day            = excluded.day,
			location       = excluded.location,
			treasury       = excluded.treasury,
			saved_at       = excluded.saved_at,
			snapshot       = excluded.snapshot`,
		slot, snap.ID.String(), snap.Day, snap.Location, snap.Treasury, time.Now().UTC(), string(data))
	if err != nil {
		s.logger.Error("Failed to write save slot", "slot", slot, "error", err)
		return fmt.Errorf("failed to write save slot %d: %w", slot, err)
	}
	return nil
}

// Load returns the snapshot in a slot, or nil if the slot is empty.
func (s *SlotStore) Load(ctx context.Context, slot int) (*world.Snapshot, error) {
	if err := checkSlot(slot); err != nil {
		return nil, err
	}
	var data string
	err := s.db.GetContext(ctx, &data, `SELECT snapshot FROM saves WHERE slot = ?`, slot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save slot %d: %w", slot, err)
	}

	var snap world.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal save slot %d: %w", slot, err)
	}
	return &snap, nil
}

// List returns the occupied slots in slot order.
func (s *SlotStore) List(ctx context.Context) ([]SlotInfo, error) {
	var infos []SlotInfo
	err := s.db.SelectContext(ctx, &infos, `
		SELECT slot, playthrough_id, day, location, treasury, saved_at
		FROM saves ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("failed to list save slots: %w", err)
	}
	return infos, nil
}

// Delete clears a slot. Deleting an empty slot is not an error.
func (s *SlotStore) Delete(ctx context.Context, slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("failed to clear save slot %d: %w", slot, err)
	}
	return nil
}

func (s *SlotStore) Close() error {
	return s.db.Close()
}
