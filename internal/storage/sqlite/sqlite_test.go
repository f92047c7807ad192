package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvd/resolvd/internal/storage"
	"github.com/resolvd/resolvd/internal/types"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "resolvd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetDocuments(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	docs := []storage.Document{
		{Category: types.CategoryBilling, Content: "refund policy text", Source: "faq.md", ChunkIndex: 0},
		{Category: types.CategoryBilling, Content: "invoice schedule text", Source: "faq.md", ChunkIndex: 1},
		{Category: types.CategoryTechnical, Content: "api rate limits", Source: "api.md", ChunkIndex: 0},
	}
	saved, err := s.SaveDocuments(ctx, docs)
	require.NoError(t, err)
	require.Len(t, saved, 3)
	for _, d := range saved {
		assert.NotZero(t, d.ID)
		assert.False(t, d.CreatedAt.IsZero())
	}

	billing, err := s.GetDocuments(ctx, types.CategoryBilling)
	require.NoError(t, err)
	require.Len(t, billing, 2)
	assert.Equal(t, "refund policy text", billing[0].Content)
	assert.Equal(t, "invoice schedule text", billing[1].Content)

	categories, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []types.Category{types.CategoryBilling, types.CategoryTechnical}, categories)
}

func TestGetDocumentsEmptyCategory(t *testing.T) {
	s := newTestStorage(t)
	docs, err := s.GetDocuments(context.Background(), types.CategorySecurity)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSaveAndGetRun(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	result := &types.Result{
		TicketID:          "T-42",
		Subject:           "Can't log in",
		Description:       "Password reset link expired",
		Category:          types.CategorySecurity,
		FinalResponse:     "Here is how to reset your password.",
		RetryCount:        1,
		ProcessingSeconds: 3.5,
		DraftsGenerated:   2,
		ReviewsConducted:  2,
		Drafts:            []types.Draft{{Content: "draft one", Version: 1}},
		Reviews:           []types.Review{{Approved: true, Score: 0.9, Feedback: "good", Issues: []string{}}},
	}
	require.NoError(t, s.SaveRun(ctx, result))

	got, err := s.GetRun(ctx, "T-42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, result.Subject, got.Subject)
	assert.Equal(t, result.Category, got.Category)
	assert.Equal(t, 1, got.RetryCount)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, 0.9, got.Reviews[0].Score)

	missing, err := s.GetRun(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetRecentRunsOrdering(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, id := range []string{"T-1", "T-2", "T-3"} {
		require.NoError(t, s.SaveRun(ctx, &types.Result{
			TicketID: id,
			Subject:  "subject " + id,
			Category: types.CategoryGeneral,
		}))
	}

	runs, err := s.GetRecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "T-3", runs[0].TicketID)
	assert.Equal(t, "T-2", runs[1].TicketID)
}

func TestRecordAndGetEscalations(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	rec := &types.EscalationRecord{
		Timestamp:        time.Now().UTC().Truncate(time.Second),
		TicketID:         "T-9",
		Subject:          "Refund request",
		Description:      "Charged twice this month",
		Category:         types.CategoryBilling,
		Confidence:       0.85,
		NumDrafts:        3,
		NumReviews:       3,
		FinalReviewScore: 0.4,
		Reason:           "Maximum retry attempts exceeded without approval",
		FailedDrafts:     "draft a... | draft b...",
		ReviewerFeedback: "missing refund steps... | still missing...",
	}
	require.NoError(t, s.RecordEscalation(ctx, rec))

	records, err := s.GetEscalations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.TicketID, records[0].TicketID)
	assert.Equal(t, rec.Reason, records[0].Reason)
	assert.Equal(t, rec.FailedDrafts, records[0].FailedDrafts)
	assert.Equal(t, 0.4, records[0].FinalReviewScore)
}
