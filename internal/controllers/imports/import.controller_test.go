package importsController

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"server/config"
	. "server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaseRepo struct {
	mu       sync.Mutex
	existing map[string]bool
	created  []*Case
	history  []*CaseHistory
}

func newFakeCaseRepo(existingCaseIDs ...string) *fakeCaseRepo {
	existing := map[string]bool{}
	for _, id := range existingCaseIDs {
		existing[id] = true
	}
	return &fakeCaseRepo{existing: existing}
}

func (r *fakeCaseRepo) Create(ctx context.Context, caseRecord *Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.existing[caseRecord.CaseID] {
		return fmt.Errorf("case with ID %s already exists", caseRecord.CaseID)
	}
	r.existing[caseRecord.CaseID] = true
	caseRecord.ID = uuid.NewString()
	r.created = append(r.created, caseRecord)
	return nil
}

func (r *fakeCaseRepo) CreateHistory(ctx context.Context, entry *CaseHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, entry)
	return nil
}

func (r *fakeCaseRepo) GetByID(ctx context.Context, id string) (*Case, error) { return nil, nil }
func (r *fakeCaseRepo) GetByCaseID(ctx context.Context, caseID string) (*Case, error) {
	return nil, nil
}
func (r *fakeCaseRepo) Update(ctx context.Context, caseRecord *Case) error { return nil }
func (r *fakeCaseRepo) Delete(ctx context.Context, id string) error        { return nil }
func (r *fakeCaseRepo) List(ctx context.Context, query *CaseQuery) ([]*Case, int64, error) {
	return nil, 0, nil
}
func (r *fakeCaseRepo) Stats(ctx context.Context, createdByID string) (*CaseStats, error) {
	return nil, nil
}

type fakeImportRepo struct {
	mu             sync.Mutex
	records        map[string]*ImportRecord
	finalizedCount int
}

func newFakeImportRepo() *fakeImportRepo {
	return &fakeImportRepo{records: map[string]*ImportRecord{}}
}

func (r *fakeImportRepo) Create(ctx context.Context, record *ImportRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = uuid.NewString()
	record.Status = ImportProcessing
	r.records[record.ID] = record
	return nil
}

func (r *fakeImportRepo) GetByID(ctx context.Context, id string) (*ImportRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("import record %s not found", id)
	}
	return record, nil
}

func (r *fakeImportRepo) GetAll(ctx context.Context, createdByID string) ([]*ImportRecord, error) {
	return nil, nil
}

func (r *fakeImportRepo) Finalize(
	ctx context.Context,
	id string,
	status ImportStatus,
	successCount, failureCount int,
	errorDetails JSONMap,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return fmt.Errorf("import record %s not found", id)
	}
	if record.Status != ImportProcessing {
		return fmt.Errorf("import record is not in PROCESSING state")
	}

	record.Status = status
	record.SuccessCount = successCount
	record.FailureCount = failureCount
	record.ErrorDetails = errorDetails
	r.finalizedCount++
	return nil
}

type fakeWSManager struct {
	mu             sync.Mutex
	progressEvents int
	completeEvents int
	errorEvents    int
}

func (m *fakeWSManager) SendImportProgress(importID string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progressEvents++
}

func (m *fakeWSManager) SendImportComplete(importID string, result map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeEvents++
}

func (m *fakeWSManager) SendImportError(importID string, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorEvents++
}

func newTestController(caseRepo *fakeCaseRepo, importRepo *fakeImportRepo) (*ImportController, *fakeWSManager) {
	ws := &fakeWSManager{}
	controller := New(caseRepo, importRepo, ws, config.Config{ImportConcurrency: 2})
	return controller, ws
}

func testCases(n int) []CaseFields {
	cases := make([]CaseFields, n)
	for i := range cases {
		cases[i] = CaseFields{
			CaseID:        fmt.Sprintf("C-%04d", i+1),
			ApplicantName: "Jane Doe",
			DOB:           "1990-01-01",
			Category:      "TAX",
			Priority:      "LOW",
		}
	}
	return cases
}

func createTestImport(t *testing.T, controller *ImportController, totalRows int) *ImportRecord {
	t.Helper()
	record, err := controller.CreateImport(context.Background(), "cases.csv", totalRows, "user-1")
	require.NoError(t, err)
	require.Equal(t, ImportProcessing, record.Status)
	return record
}

func TestParseCSV(t *testing.T) {
	controller, _ := newTestController(newFakeCaseRepo(), newFakeImportRepo())

	t.Run("parses rows keyed by header", func(t *testing.T) {
		input := "case_id,applicant_name,dob\n" +
			"C-1, jane doe ,1990-05-01\n" +
			"\n" +
			"C-2,bob,1985-02-03\n"

		rows, err := controller.ParseCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "C-1", rows[0]["case_id"])
		assert.Equal(t, "jane doe", rows[0]["applicant_name"])
		assert.Equal(t, "C-2", rows[1]["case_id"])
	})

	t.Run("empty file is fatal", func(t *testing.T) {
		_, err := controller.ParseCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("malformed CSV is fatal with no partial result", func(t *testing.T) {
		input := "case_id,dob\n\"unterminated,1990-01-01\n"
		rows, err := controller.ParseCSV(strings.NewReader(input))
		assert.ErrorIs(t, err, ErrInvalidCSV)
		assert.Nil(t, rows)
	})
}

func TestValidateAndTransform_RowNumbering(t *testing.T) {
	controller, _ := newTestController(newFakeCaseRepo(), newFakeImportRepo())

	records := []RawRow{
		validRow(),
		{"case_id": "C-2"}, // missing required fields
		func() RawRow {
			row := validRow()
			row["case_id"] = "C-3"
			return row
		}(),
	}

	preview := controller.ValidateAndTransform(records)

	assert.Equal(t, len(records), len(preview.Valid)+len(preview.Invalid))
	require.Len(t, preview.Valid, 2)
	require.Len(t, preview.Invalid, 1)

	// Row 1 is the header, so input rows are numbered from 2 in input order.
	assert.Equal(t, 3, preview.Invalid[0].Row)
	assert.Equal(t, "C-1001", preview.Valid[0].CaseID)
	assert.Equal(t, "C-3", preview.Valid[1].CaseID)
}

func TestValidateAndTransform_AllRowNumbersSequential(t *testing.T) {
	controller, _ := newTestController(newFakeCaseRepo(), newFakeImportRepo())

	records := make([]RawRow, 4)
	for i := range records {
		records[i] = RawRow{} // every row invalid
	}

	preview := controller.ValidateAndTransform(records)

	require.Len(t, preview.Invalid, 4)
	for i, invalid := range preview.Invalid {
		assert.Equal(t, i+2, invalid.Row)
	}
}

func TestProcessBatch_AllSuccess(t *testing.T) {
	caseRepo := newFakeCaseRepo()
	importRepo := newFakeImportRepo()
	controller, ws := newTestController(caseRepo, importRepo)

	record := createTestImport(t, controller, 5)

	result, err := controller.ProcessBatch(context.Background(), testCases(5), "user-1", record.ID, 2)
	require.NoError(t, err)

	assert.Len(t, result.Successful, 5)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 5, result.TotalProcessed)

	assert.Equal(t, ImportCompleted, record.Status)
	assert.Equal(t, 5, record.SuccessCount)
	assert.Equal(t, 0, record.FailureCount)
	assert.Nil(t, record.ErrorDetails)
	assert.Equal(t, 1, importRepo.finalizedCount)
	assert.Equal(t, 1, ws.completeEvents)
}

func TestProcessBatch_PartialFailure(t *testing.T) {
	cases := testCases(5)
	caseRepo := newFakeCaseRepo(cases[2].CaseID) // row 3 of 5 is a duplicate
	importRepo := newFakeImportRepo()
	controller, _ := newTestController(caseRepo, importRepo)

	record := createTestImport(t, controller, 5)

	result, err := controller.ProcessBatch(context.Background(), cases, "user-1", record.ID, 100)
	require.NoError(t, err)

	assert.Len(t, result.Successful, 4)
	assert.Len(t, result.Failed, 1)
	assert.Equal(t, 5, result.TotalProcessed)
	assert.Equal(t, cases[2].CaseID, result.Failed[0].Data.CaseID)
	assert.Contains(t, result.Failed[0].Error, cases[2].CaseID)
	assert.Contains(t, result.Failed[0].Error, "already exists")

	assert.Equal(t, ImportPartial, record.Status)
	assert.Equal(t, 4, record.SuccessCount)
	assert.Equal(t, 1, record.FailureCount)
	assert.NotNil(t, record.ErrorDetails)
}

func TestProcessBatch_AllFailure(t *testing.T) {
	cases := testCases(3)
	caseRepo := newFakeCaseRepo(cases[0].CaseID, cases[1].CaseID, cases[2].CaseID)
	importRepo := newFakeImportRepo()
	controller, _ := newTestController(caseRepo, importRepo)

	record := createTestImport(t, controller, 3)

	result, err := controller.ProcessBatch(context.Background(), cases, "user-1", record.ID, 2)
	require.NoError(t, err)

	assert.Empty(t, result.Successful)
	assert.Len(t, result.Failed, 3)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, ImportFailed, record.Status)
}

func TestProcessBatch_ChunkingProcessesEveryRowOnce(t *testing.T) {
	caseRepo := newFakeCaseRepo()
	importRepo := newFakeImportRepo()
	controller, ws := newTestController(caseRepo, importRepo)

	record := createTestImport(t, controller, 5)

	result, err := controller.ProcessBatch(context.Background(), testCases(5), "user-1", record.ID, 2)
	require.NoError(t, err)

	// 3 chunks of sizes 2, 2, 1; their union covers all 5 rows exactly once
	// regardless of completion order.
	assert.Equal(t, 3, ws.progressEvents)
	assert.Equal(t, 5, result.TotalProcessed)
	assert.Len(t, caseRepo.created, 5)

	seen := map[string]bool{}
	for _, created := range caseRepo.created {
		assert.False(t, seen[created.CaseID])
		seen[created.CaseID] = true
	}
}

func TestProcessBatch_CancelledBeforeChunksLeavesProcessing(t *testing.T) {
	caseRepo := newFakeCaseRepo()
	importRepo := newFakeImportRepo()
	controller, ws := newTestController(caseRepo, importRepo)

	record := createTestImport(t, controller, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := controller.ProcessBatch(ctx, testCases(5), "user-1", record.ID, 2)
	require.Error(t, err)

	// The record must not be finalized: PROCESSING is the observable stuck
	// state after an abort.
	assert.Equal(t, ImportProcessing, record.Status)
	assert.Equal(t, 0, importRepo.finalizedCount)
	assert.Equal(t, 1, ws.errorEvents)
}

func TestProcessBatch_CreatedCasesCarryImportMetadata(t *testing.T) {
	caseRepo := newFakeCaseRepo()
	importRepo := newFakeImportRepo()
	controller, _ := newTestController(caseRepo, importRepo)

	record := createTestImport(t, controller, 1)

	_, err := controller.ProcessBatch(context.Background(), testCases(1), "user-7", record.ID, 100)
	require.NoError(t, err)

	require.Len(t, caseRepo.created, 1)
	created := caseRepo.created[0]
	assert.Equal(t, "user-7", created.CreatedByID)
	require.NotNil(t, created.ImportID)
	assert.Equal(t, record.ID, *created.ImportID)
	assert.Equal(t, StatusPending, created.Status)

	require.Len(t, caseRepo.history, 1)
	assert.Equal(t, HistoryActionCreated, caseRepo.history[0].Action)
	assert.Equal(t, "import", caseRepo.history[0].Metadata["source"])
}

func TestChunkCases(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		chunkSize int
		expected  []int
	}{
		{"even split", 4, 2, []int{2, 2}},
		{"remainder chunk", 5, 2, []int{2, 2, 1}},
		{"single chunk", 3, 100, []int{3}},
		{"empty input", 0, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := chunkCases(testCases(tt.total), tt.chunkSize)
			require.Len(t, chunks, len(tt.expected))
			for i, chunk := range chunks {
				assert.Len(t, chunk, tt.expected[i])
			}
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		result   *BatchResult
		expected ImportStatus
	}{
		{
			name:     "all success",
			result:   &BatchResult{Successful: []string{"a", "b"}},
			expected: ImportCompleted,
		},
		{
			name:     "all failure",
			result:   &BatchResult{Failed: []FailedCase{{}}},
			expected: ImportFailed,
		},
		{
			name: "mixed",
			result: &BatchResult{
				Successful: []string{"a"},
				Failed:     []FailedCase{{}},
			},
			expected: ImportPartial,
		},
		{
			name:     "empty input counts as completed",
			result:   &BatchResult{},
			expected: ImportCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deriveStatus(tt.result))
		})
	}
}
