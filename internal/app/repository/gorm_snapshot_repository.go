package repository

import (
	"context"
	"errors"

	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/ikkim/shopgenie-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormSnapshotRepository struct {
	db     *gorm.DB
	prefix string
}

// NewGormSnapshotRepository stores snapshots in the snapshots table.
func NewGormSnapshotRepository(db *gorm.DB, prefix string) SnapshotRepository {
	return &gormSnapshotRepository{db: db, prefix: prefix}
}

func (r *gormSnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var snapshot model.StoredSnapshot
	err := r.db.WithContext(ctx).First(&snapshot, "snapshot_key = ?", namespaced(r.prefix, key)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		logger.Error("Failed to find snapshot in database", err, map[string]interface{}{
			"key": key,
		})
		return nil, err
	}
	return []byte(snapshot.Payload), nil
}

func (r *gormSnapshotRepository) Put(ctx context.Context, key string, payload []byte) error {
	snapshot := model.StoredSnapshot{
		Key:     namespaced(r.prefix, key),
		Payload: string(payload),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "snapshot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&snapshot).Error
	if err != nil {
		logger.Error("Failed to save snapshot in database", err, map[string]interface{}{
			"key": key,
		})
		return err
	}

	logger.Debug("Snapshot saved in database", map[string]interface{}{
		"key":   key,
		"bytes": len(payload),
	})
	return nil
}

func (r *gormSnapshotRepository) Delete(ctx context.Context, key string) error {
	err := r.db.WithContext(ctx).Where("snapshot_key = ?", namespaced(r.prefix, key)).Delete(&model.StoredSnapshot{}).Error
	if err != nil {
		logger.Error("Failed to delete snapshot from database", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}
