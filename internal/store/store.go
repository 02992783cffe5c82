// Package store is the durable event store behind the monitor: an embedded
// SQLite database holding config fingerprint history, security events, drift
// alerts and API metrics. All other components read and write only through
// this package.
//
// A single monitor instance owns the store. Running more than one monitor
// against the same database file is unsupported; the busy timeout exists only
// so the drift CLI can touch the store while the daemon holds it open.
package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoBaseline is returned when a file has no fingerprint history yet.
var ErrNoBaseline = errors.New("no baseline recorded for file")

// Store wraps the SQLite database.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&ConfigHistoryRecord{},
		&SecurityEvent{},
		&DriftAlert{},
		&ApiMetric{},
	); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertBaseline appends a config history record. Missing timestamps are
// filled with the current time.
func (s *Store) InsertBaseline(rec ConfigHistoryRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	return s.db.Create(&rec).Error
}

// ActiveBaseline returns the most recent fingerprint record for the path.
// Both baseline and approved_change rows qualify; an approval establishes a
// new accepted baseline. Returns ErrNoBaseline when no history exists.
func (s *Store) ActiveBaseline(path string) (ConfigHistoryRecord, error) {
	var rec ConfigHistoryRecord
	err := s.db.
		Where("file_path = ? AND change_type IN ?", path, []ChangeType{ChangeBaseline, ChangeApproved}).
		Order("timestamp DESC, id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ConfigHistoryRecord{}, ErrNoBaseline
	}
	if err != nil {
		return ConfigHistoryRecord{}, err
	}
	return rec, nil
}

// InsertEvent appends a security event, assigning an event ID and timestamp
// if absent.
func (s *Store) InsertEvent(evt SecurityEvent) error {
	fillEvent(&evt)
	return s.db.Create(&evt).Error
}

// RecordDrift inserts a drift alert and its paired security event in one
// transaction: either both records exist afterwards or neither does.
func (s *Store) RecordDrift(da DriftAlert, evt SecurityEvent) error {
	if da.AlertID == "" {
		da.AlertID = uuid.NewString()
	}
	if da.Timestamp.IsZero() {
		da.Timestamp = time.Now().UTC()
	}
	fillEvent(&evt)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&da).Error; err != nil {
			return err
		}
		return tx.Create(&evt).Error
	})
}

// ApproveDrift acknowledges every unacknowledged drift alert for the path and
// appends the new accepted baseline, in one transaction. It returns the
// number of alerts acknowledged.
func (s *Store) ApproveDrift(rec ConfigHistoryRecord) (int64, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	rec.ChangeType = ChangeApproved

	var acked int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&DriftAlert{}).
			Where("file_path = ? AND acknowledged = ?", rec.FilePath, false).
			Update("acknowledged", true)
		if res.Error != nil {
			return res.Error
		}
		acked = res.RowsAffected
		return tx.Create(&rec).Error
	})
	return acked, err
}

// ResolveEvent marks a security event as resolved by its external event ID.
func (s *Store) ResolveEvent(eventID string) error {
	res := s.db.Model(&SecurityEvent{}).
		Where("event_id = ?", eventID).
		Update("resolved", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// InsertMetric appends an API metric row.
func (s *Store) InsertMetric(m ApiMetric) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return s.db.Create(&m).Error
}

func fillEvent(evt *SecurityEvent) {
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
}
