package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	_ "modernc.org/sqlite"
)

var _ KV = (*SqliteKV)(nil)

type KVItemModel struct {
	Key       string `gorm:"column:item_key;primaryKey"`
	Value     string `gorm:"column:item_value;not null"`
	UpdatedAt time.Time
}

func (KVItemModel) TableName() string { return "kv_store" }

func OpenSqlite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{})
}

// SqliteKV is the single-file backend, handy for running locally.
type SqliteKV struct {
	db *gorm.DB
}

func NewSqliteKV(db *gorm.DB) *SqliteKV {
	return &SqliteKV{db: db}
}

func (s *SqliteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var m KVItemModel
	err := s.db.WithContext(ctx).Where("item_key = ?", key).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return m.Value, true, nil
}

func (s *SqliteKV) Set(ctx context.Context, key, value string) error {
	m := KVItemModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"item_value", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	return nil
}

func (s *SqliteKV) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("item_key = ?", key).Delete(&KVItemModel{}).Error; err != nil {
		return fmt.Errorf("sqlite remove %s: %w", key, err)
	}
	return nil
}

func (s *SqliteKV) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
