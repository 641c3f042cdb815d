package casesController

import (
	"context"
	"fmt"
	"strings"

	"server/internal/logger"
	. "server/internal/models"
	"server/internal/repositories"
	"server/internal/utils"
)

type CaseController struct {
	caseRepo repositories.CaseRepository
	dates    *utils.DateValidator
	log      logger.Logger
}

func New(caseRepo repositories.CaseRepository) *CaseController {
	return &CaseController{
		caseRepo: caseRepo,
		dates:    utils.NewDateValidator(),
		log:      logger.New("caseController"),
	}
}

// CreateCase persists a manually entered case with a CREATED history entry.
func (c *CaseController) CreateCase(
	ctx context.Context,
	req *CreateCaseRequest,
	userID string,
) (*Case, error) {
	log := c.log.Function("CreateCase")

	if err := c.validateCreateRequest(req); err != nil {
		return nil, err
	}

	priority := CasePriority(strings.ToUpper(req.Priority))
	if req.Priority == "" {
		priority = PriorityLow
	}

	caseRecord := &Case{
		CaseID:        strings.TrimSpace(req.CaseID),
		ApplicantName: utils.NormalizeApplicantName(req.ApplicantName),
		DOB:           req.DOB,
		Email:         req.Email,
		Phone:         req.Phone,
		Category:      CaseCategory(strings.ToUpper(req.Category)),
		Priority:      priority,
		Status:        StatusPending,
		Notes:         req.Notes,
		CreatedByID:   userID,
	}

	if err := c.caseRepo.Create(ctx, caseRecord); err != nil {
		return nil, err
	}

	if err := c.caseRepo.CreateHistory(ctx, &CaseHistory{
		CaseRecordID: caseRecord.ID,
		Action:       HistoryActionCreated,
		Metadata:     JSONMap{"source": "manual"},
	}); err != nil {
		log.Warn("failed to record case creation history", "caseID", caseRecord.ID, "error", err)
	}

	return caseRecord, nil
}

func (c *CaseController) validateCreateRequest(req *CreateCaseRequest) error {
	if strings.TrimSpace(req.CaseID) == "" {
		return fmt.Errorf("caseId is required")
	}
	if strings.TrimSpace(req.ApplicantName) == "" {
		return fmt.Errorf("applicantName is required")
	}
	if req.DOB == "" {
		return fmt.Errorf("dob is required")
	}
	if !c.dates.IsISODateString(req.DOB) {
		return fmt.Errorf("dob must be a valid ISO 8601 date string")
	}
	if dob := c.dates.ValidateDateOfBirth(req.DOB); !dob.IsValid {
		return fmt.Errorf("%s", dob.Error)
	}
	if !CaseCategory(strings.ToUpper(req.Category)).IsValid() {
		return fmt.Errorf("category must be one of TAX, LICENSE, PERMIT")
	}
	if req.Priority != "" && !CasePriority(strings.ToUpper(req.Priority)).IsValid() {
		return fmt.Errorf("priority must be one of LOW, MEDIUM, HIGH")
	}
	return nil
}

func (c *CaseController) GetCase(ctx context.Context, id string) (*Case, error) {
	return c.caseRepo.GetByID(ctx, id)
}

// ListCases applies the caller's filters. When operatorUserID is non-empty
// the results are restricted to that user's cases regardless of the query.
func (c *CaseController) ListCases(
	ctx context.Context,
	query *CaseQuery,
	operatorUserID string,
) ([]*Case, int64, error) {
	if operatorUserID != "" {
		query.CreatedByID = operatorUserID
	}
	return c.caseRepo.List(ctx, query)
}

// UpdateCase applies the changed fields and appends one UPDATED history
// entry per field that actually changed.
func (c *CaseController) UpdateCase(
	ctx context.Context,
	id string,
	req *UpdateCaseRequest,
	userID string,
) (*Case, error) {
	log := c.log.Function("UpdateCase")

	if err := validateUpdateRequest(req); err != nil {
		return nil, err
	}

	existing, err := c.caseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := applyUpdate(existing, req)
	if len(changes) == 0 {
		return existing, nil
	}

	if err := c.caseRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	for _, change := range changes {
		change := change
		if err := c.caseRepo.CreateHistory(ctx, &CaseHistory{
			CaseRecordID: existing.ID,
			Action:       HistoryActionUpdated,
			Field:        &change.field,
			OldValue:     change.oldValue,
			NewValue:     change.newValue,
			Metadata:     JSONMap{"updatedBy": userID},
		}); err != nil {
			log.Warn("failed to record case update history",
				"caseID", existing.ID, "field", change.field, "error", err)
		}
	}

	return existing, nil
}

func validateUpdateRequest(req *UpdateCaseRequest) error {
	if req.Category != nil && !CaseCategory(*req.Category).IsValid() {
		return fmt.Errorf("category must be one of TAX, LICENSE, PERMIT")
	}
	if req.Priority != nil && !CasePriority(*req.Priority).IsValid() {
		return fmt.Errorf("priority must be one of LOW, MEDIUM, HIGH")
	}
	if req.Status != nil && !CaseStatus(*req.Status).IsValid() {
		return fmt.Errorf("status must be one of PENDING, IN_REVIEW, APPROVED, REJECTED")
	}
	return nil
}

type fieldChange struct {
	field    string
	oldValue *string
	newValue *string
}

func applyUpdate(caseRecord *Case, req *UpdateCaseRequest) []fieldChange {
	var changes []fieldChange

	record := func(field, oldValue, newValue string) {
		old, updated := oldValue, newValue
		changes = append(changes, fieldChange{field: field, oldValue: &old, newValue: &updated})
	}

	if req.ApplicantName != nil && *req.ApplicantName != caseRecord.ApplicantName {
		record("applicantName", caseRecord.ApplicantName, *req.ApplicantName)
		caseRecord.ApplicantName = *req.ApplicantName
	}
	if req.DOB != nil && *req.DOB != caseRecord.DOB {
		record("dob", caseRecord.DOB, *req.DOB)
		caseRecord.DOB = *req.DOB
	}
	if req.Email != nil && !equalOptional(req.Email, caseRecord.Email) {
		record("email", optionalValue(caseRecord.Email), *req.Email)
		caseRecord.Email = req.Email
	}
	if req.Phone != nil && !equalOptional(req.Phone, caseRecord.Phone) {
		record("phone", optionalValue(caseRecord.Phone), *req.Phone)
		caseRecord.Phone = req.Phone
	}
	if req.Category != nil && CaseCategory(*req.Category) != caseRecord.Category {
		record("category", string(caseRecord.Category), *req.Category)
		caseRecord.Category = CaseCategory(*req.Category)
	}
	if req.Priority != nil && CasePriority(*req.Priority) != caseRecord.Priority {
		record("priority", string(caseRecord.Priority), *req.Priority)
		caseRecord.Priority = CasePriority(*req.Priority)
	}
	if req.Status != nil && CaseStatus(*req.Status) != caseRecord.Status {
		record("status", string(caseRecord.Status), *req.Status)
		caseRecord.Status = CaseStatus(*req.Status)
	}
	if req.Notes != nil && !equalOptional(req.Notes, caseRecord.Notes) {
		record("notes", optionalValue(caseRecord.Notes), *req.Notes)
		caseRecord.Notes = req.Notes
	}

	return changes
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func optionalValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (c *CaseController) DeleteCase(ctx context.Context, id string) error {
	if _, err := c.caseRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return c.caseRepo.Delete(ctx, id)
}

// GetStats returns case counts grouped by status, category, and priority,
// scoped to one user when userID is non-empty.
func (c *CaseController) GetStats(ctx context.Context, userID string) (*CaseStats, error) {
	return c.caseRepo.Stats(ctx, userID)
}
