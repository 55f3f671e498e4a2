package models

import (
	"time"
)

// StorageEntry is one key-value pair of guest state persisted through gorm.
// Rows are hard-deleted so a cleared key leaves nothing behind.
type StorageEntry struct {
	Key       string    `gorm:"column:storage_key;primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

func (StorageEntry) TableName() string {
	return "storage_entries"
}
