package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// SQLiteAdapter implements ports.AlertRepository using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// AlertModel is the GORM model for alerts.
type AlertModel struct {
	ID        string `gorm:"primaryKey"`
	Type      string `gorm:"index"`
	Subtype   string `gorm:"index"`
	Severity  string
	DeviceMAC string `gorm:"index"`
	TargetMAC string
	SSID      string
	Channel   int
	Interface string
	Message   string
	Details   string
	SensorID  string
	Latitude  float64
	Longitude float64
	Timestamp time.Time `gorm:"index"`
}

// VerdictModel is the GORM model for rogue AP verdicts. One row per rogue BSSID.
type VerdictModel struct {
	RogueBSSID      string `gorm:"primaryKey"`
	SSID            string `gorm:"index"`
	LegitimateBSSID string
	Channel         int
	DetectedAt      time.Time
}

// NewSQLiteAdapter opens the database at path, creating its directory, and
// migrates the schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("gorm tracing: %w", err)
	}

	if err := db.AutoMigrate(&AlertModel{}, &VerdictModel{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteAdapter{db: db}, nil
}

// SaveAlerts inserts alerts in one transaction. Existing IDs are left untouched.
func (a *SQLiteAdapter) SaveAlerts(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	models := make([]AlertModel, 0, len(alerts))
	for _, al := range alerts {
		models = append(models, toAlertModel(al))
	}
	return a.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(models, 100).Error
}

// ListAlerts returns the newest alerts first. limit <= 0 returns all.
func (a *SQLiteAdapter) ListAlerts(ctx context.Context, limit int) ([]domain.Alert, error) {
	var models []AlertModel
	q := a.db.WithContext(ctx).Order("timestamp desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Alert, 0, len(models))
	for _, m := range models {
		out = append(out, fromAlertModel(m))
	}
	return out, nil
}

// SaveVerdict records a verdict. A second verdict for the same rogue keeps the first.
func (a *SQLiteAdapter) SaveVerdict(ctx context.Context, v domain.RogueVerdict) error {
	m := VerdictModel{
		RogueBSSID:      v.RogueBSSID,
		SSID:            v.SSID,
		LegitimateBSSID: v.LegitimateBSSID,
		Channel:         v.Channel,
		DetectedAt:      v.DetectedAt,
	}
	return a.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error
}

// ListVerdicts returns every verdict in detection order.
func (a *SQLiteAdapter) ListVerdicts(ctx context.Context) ([]domain.RogueVerdict, error) {
	var models []VerdictModel
	if err := a.db.WithContext(ctx).Order("detected_at asc").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.RogueVerdict, 0, len(models))
	for _, m := range models {
		out = append(out, domain.RogueVerdict{
			SSID:            m.SSID,
			LegitimateBSSID: m.LegitimateBSSID,
			RogueBSSID:      m.RogueBSSID,
			Channel:         m.Channel,
			DetectedAt:      m.DetectedAt,
		})
	}
	return out, nil
}

func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toAlertModel(a domain.Alert) AlertModel {
	return AlertModel{
		ID:        a.ID,
		Type:      string(a.Type),
		Subtype:   a.Subtype,
		Severity:  string(a.Severity),
		DeviceMAC: a.DeviceMAC,
		TargetMAC: a.TargetMAC,
		SSID:      a.SSID,
		Channel:   a.Channel,
		Interface: a.Interface,
		Message:   a.Message,
		Details:   a.Details,
		SensorID:  a.SensorID,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
		Timestamp: a.Timestamp,
	}
}

func fromAlertModel(m AlertModel) domain.Alert {
	return domain.Alert{
		ID:        m.ID,
		Type:      domain.AlertType(m.Type),
		Subtype:   m.Subtype,
		Severity:  domain.AlertSeverity(m.Severity),
		DeviceMAC: m.DeviceMAC,
		TargetMAC: m.TargetMAC,
		SSID:      m.SSID,
		Channel:   m.Channel,
		Interface: m.Interface,
		Message:   m.Message,
		Details:   m.Details,
		SensorID:  m.SensorID,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		Timestamp: m.Timestamp,
	}
}

var _ ports.AlertRepository = (*SQLiteAdapter)(nil)
