package types

import (
	"strings"
	"time"
)

// Category is the class a ticket is sorted into. Categories scope knowledge
// retrieval: each category has its own index.
type Category string

const (
	CategoryBilling   Category = "billing"
	CategoryTechnical Category = "technical"
	CategorySecurity  Category = "security"
	CategoryGeneral   Category = "general"
)

// AllCategories returns the known categories in a stable order.
func AllCategories() []Category {
	return []Category{CategoryBilling, CategoryTechnical, CategorySecurity, CategoryGeneral}
}

// ParseCategory normalizes a category string. Unknown values map to
// CategoryGeneral with ok=false so callers can decide whether to log.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryBilling:
		return CategoryBilling, true
	case CategoryTechnical:
		return CategoryTechnical, true
	case CategorySecurity:
		return CategorySecurity, true
	case CategoryGeneral:
		return CategoryGeneral, true
	default:
		return CategoryGeneral, false
	}
}

// Classification is the result of classifying a ticket. Produced once per
// ticket and never mutated.
type Classification struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"` // 0.0-1.0
	Reasoning  string   `json:"reasoning"`
}

// RetrievalMetadata describes how a retrieval result was produced.
type RetrievalMetadata struct {
	Category    Category `json:"category"`
	QueryUsed   string   `json:"query_used"`
	QueriesUsed []string `json:"queries_used,omitempty"`
	NumResults  int      `json:"num_results"`
	Error       string   `json:"error,omitempty"`
}

// RetrievalResult is an ordered set of document texts returned by the
// retrieval merger, plus metadata about the search that produced it.
type RetrievalResult struct {
	Documents []string          `json:"documents"`
	Metadata  RetrievalMetadata `json:"metadata"`
}

// ContextText joins the retrieved documents into the context block passed
// to draft generation and review.
func (r *RetrievalResult) ContextText() string {
	return strings.Join(r.Documents, "\n")
}

// Draft is one generated candidate response. Versions start at 1 and are
// strictly increasing; drafts are appended, never replaced.
type Draft struct {
	Content   string    `json:"content"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// Review is a quality judgment over one draft. One review follows each
// draft before the next draft is produced.
type Review struct {
	Approved bool     `json:"approved"`
	Score    float64  `json:"score"` // 0.0-1.0
	Feedback string   `json:"feedback"`
	Issues   []string `json:"issues"`
}

// WorkflowState is the aggregate owned by the workflow engine for the
// lifetime of one ticket's processing. The engine is its only writer.
type WorkflowState struct {
	Ticket         *Ticket
	Classification *Classification

	// Retrieval holds the initial retrieval result; RefinedRetrieval is
	// replaced on each retry round. RefinedQueries are the queries used to
	// produce RefinedRetrieval.
	Retrieval        *RetrievalResult
	RefinedRetrieval *RetrievalResult
	RefinedQueries   []string

	CurrentDraft *Draft
	AllDrafts    []Draft
	AllReviews   []Review

	// RetryCount is 0-based and incremented once per redraft cycle.
	RetryCount int

	// Exactly one of FinalResponse or Escalated is set at termination.
	FinalResponse    string
	Escalated        bool
	EscalationReason string

	StartedAt time.Time
	EndedAt   time.Time
}

// LastReview returns the most recent review, or nil if none exists yet.
func (s *WorkflowState) LastReview() *Review {
	if len(s.AllReviews) == 0 {
		return nil
	}
	return &s.AllReviews[len(s.AllReviews)-1]
}

// ActiveContext returns the refined retrieval result when one exists,
// otherwise the initial result.
func (s *WorkflowState) ActiveContext() *RetrievalResult {
	if s.RefinedRetrieval != nil {
		return s.RefinedRetrieval
	}
	return s.Retrieval
}

// ElapsedSeconds returns the processing duration in fractional seconds.
// A missing start timestamp reports 0.
func (s *WorkflowState) ElapsedSeconds() float64 {
	if s.StartedAt.IsZero() {
		return 0
	}
	end := s.EndedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(s.StartedAt).Seconds()
}

// Result is the caller-facing summary of one ticket run. It is also the
// snapshot persisted for the history API.
type Result struct {
	TicketID          string   `json:"ticket_id"`
	Subject           string   `json:"subject"`
	Description       string   `json:"description"`
	Category          Category `json:"category"`
	FinalResponse     string   `json:"final_response"`
	Escalated         bool     `json:"escalated"`
	EscalationReason  string   `json:"escalation_reason,omitempty"`
	RetryCount        int      `json:"retry_count"`
	ProcessingSeconds float64  `json:"processing_time"`
	DraftsGenerated   int      `json:"drafts_generated"`
	ReviewsConducted  int      `json:"reviews_conducted"`

	Drafts  []Draft  `json:"drafts,omitempty"`
	Reviews []Review `json:"reviews,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// EscalationRecord is the append-only audit record written when a ticket is
// handed to a human. Draft and feedback texts are truncated so the record
// stays a summary, not a transcript.
type EscalationRecord struct {
	Timestamp        time.Time `json:"timestamp"`
	TicketID         string    `json:"ticket_id"`
	Subject          string    `json:"subject"`
	Description      string    `json:"description"`
	Category         Category  `json:"category"`
	Confidence       float64   `json:"classification_confidence"`
	NumDrafts        int       `json:"num_drafts"`
	NumReviews       int       `json:"num_reviews"`
	FinalReviewScore float64   `json:"final_review_score"`
	Reason           string    `json:"escalation_reason"`
	FailedDrafts     string    `json:"failed_drafts"`
	ReviewerFeedback string    `json:"reviewer_feedback"`
}

// escalationExcerptLen bounds each draft/feedback excerpt in an
// escalation record.
const escalationExcerptLen = 100

// NewEscalationRecord builds the audit record from a terminal workflow state.
func NewEscalationRecord(state *WorkflowState, reason string, now time.Time) *EscalationRecord {
	rec := &EscalationRecord{
		Timestamp:   now,
		TicketID:    "unknown",
		NumDrafts:   len(state.AllDrafts),
		NumReviews:  len(state.AllReviews),
		Reason:      reason,
		Category:    "unknown",
	}
	if state.Ticket != nil {
		if state.Ticket.TicketID != "" {
			rec.TicketID = state.Ticket.TicketID
		}
		rec.Subject = state.Ticket.Subject
		rec.Description = state.Ticket.Description
	}
	if state.Classification != nil {
		rec.Category = state.Classification.Category
		rec.Confidence = state.Classification.Confidence
	}
	if review := state.LastReview(); review != nil {
		rec.FinalReviewScore = review.Score
	}

	drafts := make([]string, 0, len(state.AllDrafts))
	for _, d := range state.AllDrafts {
		drafts = append(drafts, excerpt(d.Content, escalationExcerptLen))
	}
	rec.FailedDrafts = strings.Join(drafts, " | ")

	feedback := make([]string, 0, len(state.AllReviews))
	for _, r := range state.AllReviews {
		feedback = append(feedback, excerpt(r.Feedback, escalationExcerptLen))
	}
	rec.ReviewerFeedback = strings.Join(feedback, " | ")

	return rec
}

// excerpt truncates s to max characters and marks the cut with an ellipsis.
func excerpt(s string, max int) string {
	if len(s) <= max {
		return s + "..."
	}
	return s[:max] + "..."
}
