package models

type CaseCategory string

const (
	CategoryTax     CaseCategory = "TAX"
	CategoryLicense CaseCategory = "LICENSE"
	CategoryPermit  CaseCategory = "PERMIT"
)

func (c CaseCategory) IsValid() bool {
	switch c {
	case CategoryTax, CategoryLicense, CategoryPermit:
		return true
	}
	return false
}

type CasePriority string

const (
	PriorityLow    CasePriority = "LOW"
	PriorityMedium CasePriority = "MEDIUM"
	PriorityHigh   CasePriority = "HIGH"
)

func (p CasePriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type CaseStatus string

const (
	StatusPending  CaseStatus = "PENDING"
	StatusInReview CaseStatus = "IN_REVIEW"
	StatusApproved CaseStatus = "APPROVED"
	StatusRejected CaseStatus = "REJECTED"
)

func (s CaseStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Case struct {
	BaseUUIDModel
	CaseID        string       `gorm:"type:varchar(64);uniqueIndex;not null" json:"caseId"`
	ApplicantName string       `gorm:"type:varchar(255);not null"            json:"applicantName"`
	DOB           string       `gorm:"type:varchar(64);not null"             json:"dob"`
	Email         *string      `gorm:"type:varchar(255)"                     json:"email,omitempty"`
	Phone         *string      `gorm:"type:varchar(32)"                      json:"phone,omitempty"`
	Category      CaseCategory `gorm:"type:varchar(20);not null"             json:"category"`
	Priority      CasePriority `gorm:"type:varchar(20);not null;default:LOW" json:"priority"`
	Status        CaseStatus   `gorm:"type:varchar(20);not null;default:PENDING;index" json:"status"`
	Notes         *string      `gorm:"type:text"                             json:"notes,omitempty"`
	CreatedByID   string       `gorm:"type:varchar(64);not null;index"       json:"createdById"`
	CreatedBy     *User        `gorm:"foreignKey:CreatedByID"                json:"createdBy,omitempty"`
	ImportID      *string      `gorm:"type:varchar(64);index"                json:"importId,omitempty"`
	History       []CaseHistory `gorm:"foreignKey:CaseRecordID"              json:"history,omitempty"`
}

// CaseHistory is append-only: one CREATED entry per create and one UPDATED
// entry per changed field on every update.
type CaseHistory struct {
	BaseUUIDModel
	CaseRecordID string  `gorm:"type:varchar(64);not null;index" json:"caseRecordId"`
	Action       string  `gorm:"type:varchar(20);not null"       json:"action"`
	Field        *string `gorm:"type:varchar(64)"                json:"field,omitempty"`
	OldValue     *string `gorm:"type:text"                       json:"oldValue,omitempty"`
	NewValue     *string `gorm:"type:text"                       json:"newValue,omitempty"`
	Metadata     JSONMap `gorm:"type:text"                       json:"metadata,omitempty"`
}

const (
	HistoryActionCreated = "CREATED"
	HistoryActionUpdated = "UPDATED"
)

type CreateCaseRequest struct {
	CaseID        string  `json:"caseId"`
	ApplicantName string  `json:"applicantName"`
	DOB           string  `json:"dob"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Category      string  `json:"category"`
	Priority      string  `json:"priority,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

type UpdateCaseRequest struct {
	ApplicantName *string `json:"applicantName,omitempty"`
	DOB           *string `json:"dob,omitempty"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Category      *string `json:"category,omitempty"`
	Priority      *string `json:"priority,omitempty"`
	Status        *string `json:"status,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

type CaseQuery struct {
	Page        int    `query:"page"`
	Limit       int    `query:"limit"`
	Status      string `query:"status"`
	Category    string `query:"category"`
	Priority    string `query:"priority"`
	CreatedByID string `query:"createdById"`
	StartDate   string `query:"startDate"`
	EndDate     string `query:"endDate"`
	Search      string `query:"search"`
	SortBy      string `query:"sortBy"`
	SortOrder   string `query:"sortOrder"`
}

// Normalize fills query defaults and clamps pagination bounds.
func (q *CaseQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.SortBy == "" {
		q.SortBy = "created_at"
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
}

type CaseStats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByCategory map[string]int64 `json:"byCategory"`
	ByPriority map[string]int64 `json:"byPriority"`
}
