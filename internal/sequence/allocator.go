package sequence

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Kind identifies which entity a counter row belongs to.
type Kind string

const (
	KindFlight  Kind = "FLIGHT"
	KindBooking Kind = "BOOKING"
)

var prefixes = map[Kind]string{
	KindFlight:  "VIVA-AVFL",
	KindBooking: "VIVA-AVBOOK",
}

// Counter holds the last-issued sequence number per (kind, year). Multiple
// process instances allocate from the same row, so the increment must stay
// a single atomic statement evaluated by Postgres.
type Counter struct {
	Kind      Kind      `gorm:"primaryKey;type:varchar(16)" json:"kind"`
	Year      int       `gorm:"primaryKey" json:"year"`
	Current   int64     `gorm:"not null;default:0" json:"current"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Counter) TableName() string {
	return "charter_id_counters"
}

// Next allocates the next sequence number for (kind, year) as an
// upsert-and-increment. It must run inside the same transaction as the
// entity insert it identifies; gaps from aborted transactions are tolerated,
// reuse is not.
func Next(tx *gorm.DB, kind Kind, year int) (int64, error) {
	var current int64
	err := tx.Raw(`
		INSERT INTO charter_id_counters (kind, year, current, updated_at)
		VALUES (?, ?, 1, NOW())
		ON CONFLICT (kind, year)
		DO UPDATE SET current = charter_id_counters.current + 1, updated_at = NOW()
		RETURNING current;
	`, kind, year).Scan(&current).Error
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s sequence for %d: %w", kind, year, err)
	}
	return current, nil
}

// PublicID formats a year-scoped public identifier, e.g.
// VIVA-AVFL-2025-00042.
func PublicID(kind Kind, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefixes[kind], year, seq)
}
