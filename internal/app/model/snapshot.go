package model

import (
	"time"
)

// StoredSnapshot is one persisted store snapshot in the relational backend.
type StoredSnapshot struct {
	Key       string    `gorm:"column:snapshot_key;primaryKey;type:varchar(191)" json:"key"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StoredSnapshot) TableName() string {
	return "snapshots"
}
