package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"weekly-planner/internal/model"
)

// ExportRepository stores the template documents users explicitly exported.
type ExportRepository struct {
	db *gorm.DB
}

func NewExportRepository(db *gorm.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

func (r *ExportRepository) Create(ctx context.Context, archive *model.ExportArchive) error {
	if err := r.db.WithContext(ctx).Create(archive).Error; err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	return nil
}

// Latest returns the newest export of the user, or gorm.ErrRecordNotFound.
func (r *ExportRepository) Latest(ctx context.Context, userID uint) (*model.ExportArchive, error) {
	var archive model.ExportArchive
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&archive).Error; err != nil {
		return nil, err
	}
	return &archive, nil
}

func (r *ExportRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.ExportArchive, error) {
	var archives []model.ExportArchive
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Omit("document").Find(&archives).Error; err != nil {
		return nil, err
	}
	return archives, nil
}

// Prune keeps the newest keep exports of the user and deletes the rest.
func (r *ExportRepository) Prune(ctx context.Context, userID uint, keep int) error {
	if keep <= 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	var ids []uint
	if err := db.Model(&model.ExportArchive{}).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("list old exports: %w", err)
	}
	if len(ids) <= keep {
		return nil
	}
	if err := db.Where("id IN ?", ids[keep:]).Delete(&model.ExportArchive{}).Error; err != nil {
		return fmt.Errorf("prune exports: %w", err)
	}
	return nil
}
