package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvd/resolvd/internal/retrieval"
	"github.com/resolvd/resolvd/internal/storage/sqlite"
	"github.com/resolvd/resolvd/internal/types"
)

// fakeEngine echoes a canned result for whatever ticket it receives.
type fakeEngine struct {
	escalate bool
}

func (f *fakeEngine) Run(_ context.Context, ticket *types.Ticket) (*types.Result, error) {
	result := &types.Result{
		TicketID:      ticket.TicketID,
		Subject:       ticket.Subject,
		Description:   ticket.Description,
		Category:      types.CategoryGeneral,
		FinalResponse: "a helpful answer",
	}
	if f.escalate {
		result.Escalated = true
		result.EscalationReason = "Maximum retry attempts exceeded without approval"
	}
	return result, nil
}

func newTestServer(t *testing.T, engine TicketProcessor) (*Server, *sqlite.SQLiteStorage) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "resolvd.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	index := retrieval.NewIndex(retrieval.NewLocalEmbedder())
	ingestor := retrieval.NewIngestor(store, index, 1000, 200)
	return NewServer(engine, store, ingestor), store
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &fakeEngine{})
	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProcessTicket(t *testing.T) {
	srv, _ := newTestServer(t, &fakeEngine{})
	rec := doJSON(t, srv, http.MethodPost, "/tickets/process", map[string]string{
		"subject":     "Can't log in",
		"description": "Password reset link expired immediately",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result types.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "a helpful answer", result.FinalResponse)
	assert.NotEmpty(t, result.TicketID) // assigned when absent
}

func TestProcessTicketRejectsInvalidInput(t *testing.T) {
	srv, _ := newTestServer(t, &fakeEngine{})

	rec := doJSON(t, srv, http.MethodPost, "/tickets/process", map[string]string{
		"subject":     "Hi",
		"description": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "details")
}

func TestTicketHistory(t *testing.T) {
	srv, store := newTestServer(t, &fakeEngine{})

	require.NoError(t, store.SaveRun(context.Background(), &types.Result{
		TicketID:      "T-7",
		Subject:       "Billing question",
		Category:      types.CategoryBilling,
		FinalResponse: "answered",
		CreatedAt:     time.Now().UTC(),
	}))

	rec := doJSON(t, srv, http.MethodGet, "/tickets/T-7/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Billing question")

	rec = doJSON(t, srv, http.MethodGet, "/tickets/missing/history", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecentRuns(t *testing.T) {
	srv, store := newTestServer(t, &fakeEngine{})
	for _, id := range []string{"T-1", "T-2"} {
		require.NoError(t, store.SaveRun(context.Background(), &types.Result{TicketID: id, Category: types.CategoryGeneral}))
	}

	rec := doJSON(t, srv, http.MethodGet, "/tickets/recent?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Runs  []types.Result `json:"runs"`
		Count int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "T-2", resp.Runs[0].TicketID)
}

func TestIngestKnowledge(t *testing.T) {
	srv, store := newTestServer(t, &fakeEngine{})

	rec := doJSON(t, srv, http.MethodPost, "/knowledge/billing", map[string]any{
		"documents": []map[string]string{
			{"content": strings.Repeat("billing cycles renew monthly. ", 50), "source": "billing-faq.md"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Chunks int `json:"chunks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Greater(t, resp.Chunks, 1)

	docs, err := store.GetDocuments(context.Background(), types.CategoryBilling)
	require.NoError(t, err)
	assert.Len(t, docs, resp.Chunks)
}

func TestIngestKnowledgeRejectsUnknownCategory(t *testing.T) {
	srv, _ := newTestServer(t, &fakeEngine{})
	rec := doJSON(t, srv, http.MethodPost, "/knowledge/nonsense", map[string]any{
		"documents": []map[string]string{{"content": "text"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEscalationsCSV(t *testing.T) {
	srv, store := newTestServer(t, &fakeEngine{escalate: true})

	require.NoError(t, store.RecordEscalation(context.Background(), &types.EscalationRecord{
		Timestamp: time.Now().UTC(),
		TicketID:  "T-5",
		Subject:   "Refund",
		Category:  types.CategoryBilling,
		Reason:    "Maximum retry attempts exceeded without approval",
	}))

	rec := doJSON(t, srv, http.MethodGet, "/escalations?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "T-5")

	rec = doJSON(t, srv, http.MethodGet, "/escalations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}
