package models

type ImportStatus string

const (
	ImportProcessing ImportStatus = "PROCESSING"
	ImportCompleted  ImportStatus = "COMPLETED"
	ImportFailed     ImportStatus = "FAILED"
	ImportPartial    ImportStatus = "PARTIAL"
)

func (s ImportStatus) IsTerminal() bool {
	switch s {
	case ImportCompleted, ImportFailed, ImportPartial:
		return true
	}
	return false
}

// ImportRecord tracks one submission's lifecycle. It is created in
// PROCESSING and transitions exactly once to a terminal state; a record left
// in PROCESSING marks an aborted submission needing operator follow-up.
type ImportRecord struct {
	BaseUUIDModel
	Filename     string       `gorm:"type:varchar(255);not null"                  json:"filename"`
	TotalRows    int          `gorm:"not null"                                    json:"totalRows"`
	SuccessCount int          `gorm:"not null;default:0"                          json:"successCount"`
	FailureCount int          `gorm:"not null;default:0"                          json:"failureCount"`
	Status       ImportStatus `gorm:"type:varchar(20);not null;default:PROCESSING" json:"status"`
	ErrorDetails JSONMap      `gorm:"type:text"                                   json:"errorDetails,omitempty"`
	CreatedByID  string       `gorm:"type:varchar(64);not null;index"             json:"createdById"`
	CreatedBy    *User        `gorm:"foreignKey:CreatedByID"                      json:"createdBy,omitempty"`
	Cases        []Case       `gorm:"foreignKey:ImportID"                         json:"cases,omitempty"`
}

// RawRow is one parsed CSV line keyed by column name. Unknown or missing
// columns are tolerated and read as empty.
type RawRow map[string]string

// CaseFields is the normalized shape a row must have before validation.
// Values are never mutated after construction.
type CaseFields struct {
	CaseID        string  `json:"caseId"`
	ApplicantName string  `json:"applicantName"`
	DOB           string  `json:"dob"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Category      string  `json:"category"`
	Priority      string  `json:"priority"`
	Notes         *string `json:"notes,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// RowValidation is the outcome of validating one row.
// Invariant: IsValid == (len(Errors) == 0).
type RowValidation struct {
	IsValid bool         `json:"isValid"`
	Data    CaseFields   `json:"data"`
	Errors  []FieldError `json:"errors"`
}

type InvalidRow struct {
	Row    int          `json:"row"`
	Data   RawRow       `json:"data"`
	Errors []FieldError `json:"errors"`
}

// ImportPreview is the result of validating a parsed upload, before anything
// is persisted.
type ImportPreview struct {
	Valid   []CaseFields `json:"valid"`
	Invalid []InvalidRow `json:"invalid"`
}

type FailedCase struct {
	Data  CaseFields `json:"row"`
	Error string     `json:"error"`
}

// BatchResult accumulates per-row outcomes across chunks. Accumulation is an
// order-independent merge, so chunk completion order never matters.
type BatchResult struct {
	Successful     []string     `json:"successful"`
	Failed         []FailedCase `json:"failed"`
	TotalProcessed int          `json:"totalProcessed"`
}

type SubmitImportRequest struct {
	Filename string       `json:"filename"`
	Cases    []CaseFields `json:"cases"`
}
