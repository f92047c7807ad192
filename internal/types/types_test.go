package types

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicketGeneratesID(t *testing.T) {
	ticket := NewTicket("Can't log in", "Password reset link expired immediately", "")
	assert.NotEmpty(t, ticket.TicketID)

	ticket = NewTicket("Can't log in", "Password reset link expired immediately", "T1")
	assert.Equal(t, "T1", ticket.TicketID)
}

func TestTicketQuery(t *testing.T) {
	ticket := NewTicket("Can't log in", "Password reset link expired", "T1")
	assert.Equal(t, "Can't log in Password reset link expired", ticket.Query())
}

func TestValidateTicketInput(t *testing.T) {
	tests := []struct {
		name        string
		subject     string
		description string
		wantErrs    int
	}{
		{"valid", "Can't log in", "Password reset link expired immediately", 0},
		{"empty subject", "", "A perfectly fine description here", 1},
		{"short subject", "Hi", "A perfectly fine description here", 1},
		{"short description", "Can't log in", "short", 1},
		{"long subject", strings.Repeat("x", 201), "A perfectly fine description", 1},
		{"script injection", "Help <script>alert(1)</script>", "A perfectly fine description", 1},
		{"both empty", "", "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateTicketInput(tt.subject, tt.description)
			assert.Len(t, errs, tt.wantErrs)
		})
	}
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeText("hello   \n  world"))
	assert.Equal(t, "click here", SanitizeText("click <script>evil()</script> here"))
	assert.Equal(t, "", SanitizeText(""))
}

func TestParseCategory(t *testing.T) {
	cat, ok := ParseCategory("Billing")
	assert.True(t, ok)
	assert.Equal(t, CategoryBilling, cat)

	cat, ok = ParseCategory("nonsense")
	assert.False(t, ok)
	assert.Equal(t, CategoryGeneral, cat)
}

func TestWorkflowStateActiveContext(t *testing.T) {
	initial := &RetrievalResult{Documents: []string{"initial"}}
	state := &WorkflowState{Retrieval: initial}
	assert.Same(t, initial, state.ActiveContext())

	refined := &RetrievalResult{Documents: []string{"refined"}}
	state.RefinedRetrieval = refined
	assert.Same(t, refined, state.ActiveContext())
}

func TestElapsedSecondsMissingStart(t *testing.T) {
	state := &WorkflowState{}
	assert.Equal(t, 0.0, state.ElapsedSeconds())

	start := time.Now()
	state.StartedAt = start
	state.EndedAt = start.Add(1500 * time.Millisecond)
	assert.InDelta(t, 1.5, state.ElapsedSeconds(), 0.001)
}

func TestNewEscalationRecord(t *testing.T) {
	now := time.Now()
	state := &WorkflowState{
		Ticket:         NewTicket("Can't log in", "Password reset link expired immediately", "T1"),
		Classification: &Classification{Category: CategorySecurity, Confidence: 0.9},
		AllDrafts: []Draft{
			{Content: strings.Repeat("a", 150), Version: 1},
			{Content: "short draft", Version: 2},
		},
		AllReviews: []Review{
			{Approved: false, Score: 0.4, Feedback: "missing steps"},
			{Approved: false, Score: 0.5, Feedback: "still missing steps"},
		},
	}

	rec := NewEscalationRecord(state, "Maximum retry attempts exceeded without approval", now)
	require.NotNil(t, rec)
	assert.Equal(t, "T1", rec.TicketID)
	assert.Equal(t, CategorySecurity, rec.Category)
	assert.Equal(t, 0.9, rec.Confidence)
	assert.Equal(t, 2, rec.NumDrafts)
	assert.Equal(t, 2, rec.NumReviews)
	assert.Equal(t, 0.5, rec.FinalReviewScore)

	// Each draft excerpt is capped at 100 chars plus the ellipsis marker.
	parts := strings.Split(rec.FailedDrafts, " | ")
	require.Len(t, parts, 2)
	assert.Equal(t, strings.Repeat("a", 100)+"...", parts[0])
	assert.Equal(t, "short draft...", parts[1])
}

func TestNewEscalationRecordEmptyState(t *testing.T) {
	rec := NewEscalationRecord(&WorkflowState{}, "no review result", time.Now())
	assert.Equal(t, "unknown", rec.TicketID)
	assert.Equal(t, Category("unknown"), rec.Category)
	assert.Equal(t, 0.0, rec.FinalReviewScore)
}
