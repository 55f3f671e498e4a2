package storage

import (
	"context"
	"errors"
	"fmt"

	"storefront-bff/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps guest state in the storage_entries table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) Get(ctx context.Context, key string) (string, error) {
	var entry models.StorageEntry
	err := g.db.WithContext(ctx).Where("storage_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return entry.Value, nil
}

func (g *GormStore) Set(ctx context.Context, key, value string) error {
	entry := models.StorageEntry{Key: key, Value: value}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (g *GormStore) Remove(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&models.StorageEntry{}).Error; err != nil {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}
