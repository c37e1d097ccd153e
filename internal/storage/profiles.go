// Package storage persists per-chat settings in SQLite.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bot_uni_schedule/internal/schedule"
)

// Profile holds one chat's settings. Created lazily on first interaction;
// reminders default to on and the format to the full week.
type Profile struct {
	ChatID    int64  `gorm:"primaryKey"`
	GroupName string `gorm:"size:32"`
	Subgroup  int
	Reminders bool
	Format    string `gorm:"size:16"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Profiles struct {
	db  *gorm.DB
	log *zap.Logger
}

func Open(path string, log *zap.Logger) (*Profiles, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := db.AutoMigrate(&Profile{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	log.Info("database ready", zap.String("path", path))
	return &Profiles{db: db, log: log}, nil
}

// Get returns the chat's profile, creating one with defaults if missing.
func (p *Profiles) Get(chatID int64) (Profile, error) {
	var prof Profile
	err := p.db.First(&prof, "chat_id = ?", chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prof = Profile{ChatID: chatID, Reminders: true, Format: string(schedule.FormatFull)}
		if err := p.db.Create(&prof).Error; err != nil {
			return Profile{}, fmt.Errorf("create profile: %w", err)
		}
		return prof, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return prof, nil
}

func (p *Profiles) SetGroup(chatID int64, group string) error {
	return p.update(chatID, "group_name", group)
}

func (p *Profiles) SetSubgroup(chatID int64, subgroup int) error {
	return p.update(chatID, "subgroup", subgroup)
}

func (p *Profiles) SetReminders(chatID int64, enabled bool) error {
	return p.update(chatID, "reminders", enabled)
}

func (p *Profiles) SetFormat(chatID int64, format schedule.Format) error {
	return p.update(chatID, "format", string(format))
}

func (p *Profiles) update(chatID int64, column string, value any) error {
	if _, err := p.Get(chatID); err != nil {
		return err
	}
	if err := p.db.Model(&Profile{}).Where("chat_id = ?", chatID).Update(column, value).Error; err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	return nil
}
