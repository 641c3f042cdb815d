package repositories

import (
	"context"
	"server/internal/database"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/services"
	"time"

	"gorm.io/gorm"
)

const (
	IMPORT_CACHE_EXPIRY = 24 * time.Hour
)

// ImportRepository owns the ImportRecord state machine. Finalize is the only
// writer of the status column, so an import can never transition twice or be
// reopened by a racing submission.
type ImportRepository interface {
	Create(ctx context.Context, record *ImportRecord) error
	GetByID(ctx context.Context, id string) (*ImportRecord, error)
	GetAll(ctx context.Context, createdByID string) ([]*ImportRecord, error)
	Finalize(
		ctx context.Context,
		id string,
		status ImportStatus,
		successCount, failureCount int,
		errorDetails JSONMap,
	) error
}

type importRepository struct {
	db  database.DB
	log logger.Logger
}

func NewImport(db database.DB) ImportRepository {
	return &importRepository{
		db:  db,
		log: logger.New("importRepository"),
	}
}

func (r *importRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *importRepository) Create(ctx context.Context, record *ImportRecord) error {
	log := r.log.Function("Create")

	record.Status = ImportProcessing

	if err := r.getDB(ctx).Create(record).Error; err != nil {
		return log.Err("failed to create import record", err, "filename", record.Filename)
	}

	if err := r.addImportToCache(ctx, record); err != nil {
		log.Warn("failed to add import record to cache", "importID", record.ID, "error", err)
	}

	return nil
}

func (r *importRepository) GetByID(ctx context.Context, id string) (*ImportRecord, error) {
	log := r.log.Function("GetByID")

	var record ImportRecord
	if err := r.getDB(ctx).
		Preload("CreatedBy").
		Preload("Cases", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(100)
		}).
		First(&record, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get import record", err, "id", id)
	}

	return &record, nil
}

func (r *importRepository) GetAll(ctx context.Context, createdByID string) ([]*ImportRecord, error) {
	log := r.log.Function("GetAll")

	db := r.getDB(ctx).Preload("CreatedBy").Order("created_at DESC")
	if createdByID != "" {
		db = db.Where("created_by_id = ?", createdByID)
	}

	var records []*ImportRecord
	if err := db.Find(&records).Error; err != nil {
		return nil, log.Err("failed to get import records", err)
	}

	return records, nil
}

// Finalize moves a PROCESSING import to its terminal state. The status guard
// in the WHERE clause makes the transition exactly-once: a second finalize
// attempt matches no rows and fails.
func (r *importRepository) Finalize(
	ctx context.Context,
	id string,
	status ImportStatus,
	successCount, failureCount int,
	errorDetails JSONMap,
) error {
	log := r.log.Function("Finalize")

	if !status.IsTerminal() {
		return log.Error("finalize requires a terminal status", "status", status)
	}

	updates := map[string]any{
		"status":        status,
		"success_count": successCount,
		"failure_count": failureCount,
	}
	if errorDetails != nil {
		updates["error_details"] = errorDetails
	}

	result := r.getDB(ctx).
		Model(&ImportRecord{}).
		Where("id = ? AND status = ?", id, ImportProcessing).
		Updates(updates)
	if result.Error != nil {
		return log.Err("failed to finalize import record", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return log.Error("import record is not in PROCESSING state", "id", id)
	}

	if err := database.NewCacheBuilder(r.db.Cache.Import, id).Delete(); err != nil {
		log.Warn("failed to invalidate import record cache", "importID", id, "error", err)
	}

	return nil
}

func (r *importRepository) addImportToCache(ctx context.Context, record *ImportRecord) error {
	if err := database.NewCacheBuilder(r.db.Cache.Import, record.ID).
		WithStruct(record).
		WithTTL(IMPORT_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		return r.log.Function("addImportToCache").
			Err("failed to add import record to cache", err, "importID", record.ID)
	}
	return nil
}
