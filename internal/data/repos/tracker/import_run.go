package tracker

import (
	"gorm.io/gorm"

	"github.com/aiig/deliverables-backend/internal/domain"
	"github.com/aiig/deliverables-backend/internal/platform/dbctx"
	"github.com/aiig/deliverables-backend/internal/platform/logger"
)

type ImportRunRepo interface {
	Create(dbc dbctx.Context, run *domain.ImportRun) (*domain.ImportRun, error)
	List(dbc dbctx.Context, limit int) ([]*domain.ImportRun, error)
}

type importRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImportRunRepo(db *gorm.DB, baseLog *logger.Logger) ImportRunRepo {
	return &importRunRepo{db: db, log: baseLog.With("repo", "ImportRunRepo")}
}

func (r *importRunRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *importRunRepo) Create(dbc dbctx.Context, run *domain.ImportRun) (*domain.ImportRun, error) {
	if err := r.handle(dbc).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *importRunRepo) List(dbc dbctx.Context, limit int) ([]*domain.ImportRun, error) {
	q := r.handle(dbc).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []*domain.ImportRun
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
