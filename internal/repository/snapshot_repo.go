package repository

import (
	"context"

	"colchones/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SnapshotRepository stores the one-level undo record of spreadsheet imports.
type SnapshotRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.SnapshotImportacion) error
	Ultimo(ctx context.Context, tx *gorm.DB) (*model.SnapshotImportacion, error)
	MarcarDeshecho(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type snapshotRepo struct{ db *gorm.DB }

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository { return &snapshotRepo{db: db} }

func (r *snapshotRepo) Create(ctx context.Context, tx *gorm.DB, s *model.SnapshotImportacion) error {
	return traducir(conn(r.db, tx).WithContext(ctx).Create(s).Error)
}

// Ultimo returns the most recent import when it has not been undone yet.
// Only one level of undo exists: older snapshots are never returned.
func (r *snapshotRepo) Ultimo(ctx context.Context, tx *gorm.DB) (*model.SnapshotImportacion, error) {
	var s model.SnapshotImportacion
	err := conn(r.db, tx).WithContext(ctx).Order("created_at DESC").First(&s).Error
	if err != nil {
		return nil, traducir(err)
	}
	if s.Deshecho {
		return nil, traducir(gorm.ErrRecordNotFound)
	}
	return &s, nil
}

func (r *snapshotRepo) MarcarDeshecho(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return traducir(conn(r.db, tx).WithContext(ctx).Model(&model.SnapshotImportacion{}).
		Where("id = ?", id).Update("deshecho", true).Error)
}
