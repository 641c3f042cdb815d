package repositories

import (
	"context"
	"fmt"
	"server/internal/database"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/services"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CASE_CACHE_EXPIRY = 24 * time.Hour
)

type CaseRepository interface {
	GetByID(ctx context.Context, id string) (*Case, error)
	GetByCaseID(ctx context.Context, caseID string) (*Case, error)
	Create(ctx context.Context, caseRecord *Case) error
	Update(ctx context.Context, caseRecord *Case) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query *CaseQuery) ([]*Case, int64, error)
	Stats(ctx context.Context, createdByID string) (*CaseStats, error)
	CreateHistory(ctx context.Context, entry *CaseHistory) error
}

type caseRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCase(db database.DB) CaseRepository {
	return &caseRepository{
		db:  db,
		log: logger.New("caseRepository"),
	}
}

func (r *caseRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := services.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*Case, error) {
	log := r.log.Function("GetByID")

	var caseRecord Case
	if err := r.getCacheByID(ctx, id, &caseRecord); err == nil {
		return &caseRecord, nil
	}

	if err := r.getDBByID(ctx, id, &caseRecord); err != nil {
		return nil, err
	}

	if err := r.addCaseToCache(ctx, &caseRecord); err != nil {
		log.Warn("failed to add case to cache", "caseID", id, "error", err)
	}

	return &caseRecord, nil
}

func (r *caseRepository) GetByCaseID(ctx context.Context, caseID string) (*Case, error) {
	log := r.log.Function("GetByCaseID")

	var caseRecord Case
	if err := r.getDB(ctx).First(&caseRecord, "case_id = ?", caseID).Error; err != nil {
		return nil, log.Err("failed to get case by business id", err, "caseID", caseID)
	}

	return &caseRecord, nil
}

// Create persists a new case. A case whose business identifier already
// exists is rejected with an error naming the conflicting identifier; the
// store's unique index is the final authority when concurrent submissions
// race past this check.
func (r *caseRepository) Create(ctx context.Context, caseRecord *Case) error {
	log := r.log.Function("Create")

	var existing Case
	if err := r.getDB(ctx).Select("id").First(&existing, "case_id = ?", caseRecord.CaseID).Error; err == nil {
		return fmt.Errorf("case with ID %s already exists", caseRecord.CaseID)
	}

	if err := r.getDB(ctx).Create(caseRecord).Error; err != nil {
		return log.Err("failed to create case", err, "caseID", caseRecord.CaseID)
	}

	if err := r.addCaseToCache(ctx, caseRecord); err != nil {
		log.Warn("failed to add case to cache", "caseID", caseRecord.ID, "error", err)
	}

	return nil
}

func (r *caseRepository) Update(ctx context.Context, caseRecord *Case) error {
	log := r.log.Function("Update")

	if err := r.getDB(ctx).Save(caseRecord).Error; err != nil {
		return log.Err("failed to update case", err, "caseID", caseRecord.ID)
	}

	if err := r.addCaseToCache(ctx, caseRecord); err != nil {
		log.Warn("failed to update case in cache", "caseID", caseRecord.ID, "error", err)
	}

	return nil
}

func (r *caseRepository) Delete(ctx context.Context, id string) error {
	log := r.log.Function("Delete")

	if err := r.getDB(ctx).Delete(&Case{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete case", err, "id", id)
	}

	if err := database.NewCacheBuilder(r.db.Cache.Case, id).Delete(); err != nil {
		log.Warn("failed to remove case from cache", "caseID", id, "error", err)
	}

	return nil
}

func (r *caseRepository) List(ctx context.Context, query *CaseQuery) ([]*Case, int64, error) {
	log := r.log.Function("List")

	query.Normalize()

	db := r.getDB(ctx).Model(&Case{})

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Category != "" {
		db = db.Where("category = ?", query.Category)
	}
	if query.Priority != "" {
		db = db.Where("priority = ?", query.Priority)
	}
	if query.CreatedByID != "" {
		db = db.Where("created_by_id = ?", query.CreatedByID)
	}
	if query.StartDate != "" {
		db = db.Where("created_at >= ?", query.StartDate)
	}
	if query.EndDate != "" {
		db = db.Where("created_at <= ?", query.EndDate)
	}
	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		db = db.Where(
			"case_id LIKE ? OR applicant_name LIKE ? OR email LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count cases", err)
	}

	var cases []*Case
	offset := (query.Page - 1) * query.Limit
	if err := db.
		Order(sortClause(query)).
		Offset(offset).
		Limit(query.Limit).
		Preload("CreatedBy").
		Find(&cases).Error; err != nil {
		return nil, 0, log.Err("failed to list cases", err)
	}

	return cases, total, nil
}

var sortableColumns = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"case_id":        true,
	"applicant_name": true,
	"status":         true,
	"category":       true,
	"priority":       true,
}

func sortClause(query *CaseQuery) string {
	column := query.SortBy
	if !sortableColumns[column] {
		column = "created_at"
	}
	return column + " " + query.SortOrder
}

func (r *caseRepository) Stats(ctx context.Context, createdByID string) (*CaseStats, error) {
	log := r.log.Function("Stats")

	base := func() *gorm.DB {
		db := r.getDB(ctx).Model(&Case{})
		if createdByID != "" {
			db = db.Where("created_by_id = ?", createdByID)
		}
		return db
	}

	stats := &CaseStats{
		ByStatus:   map[string]int64{},
		ByCategory: map[string]int64{},
		ByPriority: map[string]int64{},
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, log.Err("failed to count cases", err)
	}

	groups := []struct {
		column string
		target map[string]int64
	}{
		{"status", stats.ByStatus},
		{"category", stats.ByCategory},
		{"priority", stats.ByPriority},
	}

	for _, group := range groups {
		var rows []struct {
			Value string
			Count int64
		}
		if err := base().
			Select(group.column + " AS value, COUNT(*) AS count").
			Group(group.column).
			Scan(&rows).Error; err != nil {
			return nil, log.Err("failed to group cases", err, "column", group.column)
		}
		for _, row := range rows {
			group.target[row.Value] = row.Count
		}
	}

	return stats, nil
}

func (r *caseRepository) CreateHistory(ctx context.Context, entry *CaseHistory) error {
	log := r.log.Function("CreateHistory")

	if err := r.getDB(ctx).Create(entry).Error; err != nil {
		return log.Err("failed to create history entry", err, "caseRecordID", entry.CaseRecordID)
	}

	return nil
}

func (r *caseRepository) getCacheByID(ctx context.Context, caseID string, caseRecord *Case) error {
	found, err := database.NewCacheBuilder(r.db.Cache.Case, caseID).Get(caseRecord)
	if err != nil {
		return r.log.Function("getCacheByID").
			Err("failed to get case from cache", err, "caseID", caseID)
	}

	if !found {
		return r.log.Function("getCacheByID").
			Error("case not found in cache", "caseID", caseID)
	}

	return nil
}

func (r *caseRepository) addCaseToCache(ctx context.Context, caseRecord *Case) error {
	if err := database.NewCacheBuilder(r.db.Cache.Case, caseRecord.ID).
		WithStruct(caseRecord).
		WithTTL(CASE_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		return r.log.Function("addCaseToCache").
			Err("failed to add case to cache", err, "caseID", caseRecord.ID)
	}
	return nil
}

func (r *caseRepository) getDBByID(ctx context.Context, caseID string, caseRecord *Case) error {
	log := r.log.Function("getDBByID")

	id, err := uuid.Parse(caseID)
	if err != nil {
		return log.Err("failed to parse caseID", err, "caseID", caseID)
	}

	if err := r.getDB(ctx).
		Preload("CreatedBy").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(caseRecord, "id = ?", id).Error; err != nil {
		return log.Err("failed to get case by id", err, "id", caseID)
	}

	return nil
}
