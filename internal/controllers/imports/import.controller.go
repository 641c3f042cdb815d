package importsController

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"server/config"
	"server/internal/logger"
	. "server/internal/models"
	"server/internal/repositories"

	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyFile  = errors.New("file is empty")
	ErrInvalidCSV = errors.New("invalid CSV format")
)

const DefaultChunkSize = 100

// WSManager broadcasts import progress to connected clients. Declared here
// to avoid an import cycle with the websocket package.
type WSManager interface {
	SendImportProgress(importID string, data map[string]any)
	SendImportComplete(importID string, result map[string]any)
	SendImportError(importID string, errorMsg string)
}

type ImportController struct {
	caseRepo   repositories.CaseRepository
	importRepo repositories.ImportRepository
	validator  *RowValidator
	wsManager  WSManager
	config     config.Config
	log        logger.Logger
}

func New(
	caseRepo repositories.CaseRepository,
	importRepo repositories.ImportRepository,
	wsManager WSManager,
	config config.Config,
) *ImportController {
	return &ImportController{
		caseRepo:   caseRepo,
		importRepo: importRepo,
		validator:  NewRowValidator(),
		wsManager:  wsManager,
		config:     config,
		log:        logger.New("importController"),
	}
}

// ParseCSV reads the upload into rows keyed by header column name. Cells are
// trimmed and fully empty lines skipped. A file that cannot be read as CSV
// at all is a fatal error for the whole upload; no partial result is
// returned.
func (c *ImportController) ParseCSV(r io.Reader) ([]RawRow, error) {
	log := c.log.Function("ParseCSV")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, log.Err("failed to read CSV header", fmt.Errorf("%w: %v", ErrInvalidCSV, err))
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, log.Err("failed to read CSV record", fmt.Errorf("%w: %v", ErrInvalidCSV, err))
		}

		empty := true
		row := RawRow{}
		for i, name := range columns {
			if i >= len(record) || name == "" {
				continue
			}
			value := strings.TrimSpace(record[i])
			row[name] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// ValidateAndTransform validates every parsed row and partitions them into
// valid normalized rows and invalid rows with their error lists. Row numbers
// start at 2 (row 1 is the CSV header) and follow input order. This step is
// a pure transform; nothing is persisted.
func (c *ImportController) ValidateAndTransform(records []RawRow) *ImportPreview {
	preview := &ImportPreview{
		Valid:   []CaseFields{},
		Invalid: []InvalidRow{},
	}

	for i, record := range records {
		rowNumber := i + 2

		validation := c.validator.ValidateRow(record, rowNumber)
		if validation.IsValid {
			preview.Valid = append(preview.Valid, validation.Data)
		} else {
			preview.Invalid = append(preview.Invalid, InvalidRow{
				Row:    rowNumber,
				Data:   record,
				Errors: validation.Errors,
			})
		}
	}

	return preview
}

// CreateImport opens the import record in PROCESSING state. Must be called
// once per submission, before any case row is persisted.
func (c *ImportController) CreateImport(
	ctx context.Context,
	filename string,
	totalRows int,
	userID string,
) (*ImportRecord, error) {
	record := &ImportRecord{
		Filename:    filename,
		TotalRows:   totalRows,
		CreatedByID: userID,
		Status:      ImportProcessing,
	}

	if err := c.importRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// ProcessBatch persists the validated rows in contiguous chunks of at most
// chunkSize, dispatched with bounded concurrency. A failure to persist one
// row is recorded in the result and never aborts the chunk or subsequent
// chunks. After all chunks finish the import record is finalized exactly
// once: COMPLETED when nothing failed, FAILED when nothing succeeded,
// PARTIAL otherwise. If the pipeline aborts before the chunks complete the
// record stays PROCESSING, which is the observable stuck state.
func (c *ImportController) ProcessBatch(
	ctx context.Context,
	cases []CaseFields,
	userID string,
	importID string,
	chunkSize int,
) (*BatchResult, error) {
	log := c.log.Function("ProcessBatch")

	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	concurrency := c.config.ImportConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	chunks := chunkCases(cases, chunkSize)
	chunkResults := make([]*BatchResult, len(chunks))

	var processed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			chunkResults[i] = c.processChunk(gctx, chunk, userID, importID)

			c.wsManager.SendImportProgress(importID, map[string]any{
				"processed": processed.Add(int64(len(chunk))),
				"total":     len(cases),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Aborted mid-flight: the import record is left in PROCESSING for
		// operator follow-up rather than finalized with partial counts.
		c.wsManager.SendImportError(importID, err.Error())
		return nil, log.Err("import aborted before all chunks completed", err, "importID", importID)
	}

	// Order-independent merge: chunk completion order never affects the
	// accumulated result.
	result := &BatchResult{
		Successful: []string{},
		Failed:     []FailedCase{},
	}
	for _, chunkResult := range chunkResults {
		result.Successful = append(result.Successful, chunkResult.Successful...)
		result.Failed = append(result.Failed, chunkResult.Failed...)
		result.TotalProcessed += chunkResult.TotalProcessed
	}

	status := deriveStatus(result)

	var errorDetails JSONMap
	if len(result.Failed) > 0 {
		errorDetails = JSONMap{"errors": result.Failed}
	}

	if err := c.importRepo.Finalize(
		ctx, importID, status,
		len(result.Successful), len(result.Failed),
		errorDetails,
	); err != nil {
		return nil, err
	}

	c.wsManager.SendImportComplete(importID, map[string]any{
		"status":         string(status),
		"successful":     len(result.Successful),
		"failed":         len(result.Failed),
		"totalProcessed": result.TotalProcessed,
	})

	log.Info("import processed",
		"importID", importID,
		"status", status,
		"successful", len(result.Successful),
		"failed", len(result.Failed),
	)

	return result, nil
}

func (c *ImportController) processChunk(
	ctx context.Context,
	chunk []CaseFields,
	userID string,
	importID string,
) *BatchResult {
	result := &BatchResult{}

	for _, fields := range chunk {
		created, err := c.createCase(ctx, fields, userID, importID)
		if err != nil {
			result.Failed = append(result.Failed, FailedCase{
				Data:  fields,
				Error: err.Error(),
			})
		} else {
			result.Successful = append(result.Successful, created.ID)
		}
		result.TotalProcessed++
	}

	return result
}

func (c *ImportController) createCase(
	ctx context.Context,
	fields CaseFields,
	userID string,
	importID string,
) (*Case, error) {
	priority := CasePriority(fields.Priority)
	if fields.Priority == "" {
		priority = PriorityLow
	}

	caseRecord := &Case{
		CaseID:        fields.CaseID,
		ApplicantName: fields.ApplicantName,
		DOB:           fields.DOB,
		Email:         fields.Email,
		Phone:         fields.Phone,
		Category:      CaseCategory(fields.Category),
		Priority:      priority,
		Status:        StatusPending,
		Notes:         fields.Notes,
		CreatedByID:   userID,
		ImportID:      &importID,
	}

	if err := c.caseRepo.Create(ctx, caseRecord); err != nil {
		return nil, err
	}

	if err := c.caseRepo.CreateHistory(ctx, &CaseHistory{
		CaseRecordID: caseRecord.ID,
		Action:       HistoryActionCreated,
		Metadata:     JSONMap{"source": "import"},
	}); err != nil {
		return nil, err
	}

	return caseRecord, nil
}

func (c *ImportController) GetImports(ctx context.Context, createdByID string) ([]*ImportRecord, error) {
	return c.importRepo.GetAll(ctx, createdByID)
}

func (c *ImportController) GetImportByID(ctx context.Context, id string) (*ImportRecord, error) {
	return c.importRepo.GetByID(ctx, id)
}

func chunkCases(cases []CaseFields, chunkSize int) [][]CaseFields {
	var chunks [][]CaseFields
	for start := 0; start < len(cases); start += chunkSize {
		end := start + chunkSize
		if end > len(cases) {
			end = len(cases)
		}
		chunks = append(chunks, cases[start:end])
	}
	return chunks
}

func deriveStatus(result *BatchResult) ImportStatus {
	switch {
	case len(result.Failed) == 0:
		return ImportCompleted
	case len(result.Successful) == 0:
		return ImportFailed
	default:
		return ImportPartial
	}
}
