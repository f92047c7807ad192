package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resolvd/resolvd/internal/ai"
	"github.com/resolvd/resolvd/internal/types"
)

// Customer-facing fallback texts. These are deliberate exact strings:
// they appear in customer responses and in the escalation audit trail.
const (
	fallbackDraftMessage   = "I apologize, but I'm experiencing technical difficulties. Please contact our support team directly."
	fallbackRedraftMessage = "I apologize for the confusion. Let me connect you with a human agent for better assistance."

	escalationMessage = "I apologize, but your request requires human review to ensure we provide " +
		"the most accurate assistance. A support specialist will review your case " +
		"and respond within 24 hours. Thank you for your patience."

	reasonMaxRetries = "Maximum retry attempts exceeded without approval"
	reasonNoReview   = "No review result available"
)

// reviewFailureFeedback is recorded when the reviewer is unreachable.
const (
	failOpenFeedback   = "System error during review, auto-approved"
	failClosedFeedback = "System error during review, rejected for safety"
)

// Classifier assigns a ticket to a category.
type Classifier interface {
	Classify(ctx context.Context, ticket types.Ticket) (*types.Classification, error)
}

// Drafter generates customer-facing response drafts.
type Drafter interface {
	Draft(ctx context.Context, req ai.DraftRequest) (string, error)
	Redraft(ctx context.Context, req ai.DraftRequest) (string, error)
}

// Reviewer judges a draft for quality and policy compliance.
type Reviewer interface {
	Review(ctx context.Context, ticket types.Ticket, category types.Category, draft, contextText string) (*types.Review, error)
}

// QueryRefiner turns reviewer feedback into alternative search queries.
type QueryRefiner interface {
	RefineQueries(ctx context.Context, query string, category types.Category, feedback string) ([]string, error)
}

// Retriever performs knowledge-base search. Retrieval never fails; errors
// surface in the result metadata.
type Retriever interface {
	Search(ctx context.Context, query string, category types.Category, k int) *types.RetrievalResult
	MultiSearch(ctx context.Context, queries []string, category types.Category, k, limit int) *types.RetrievalResult
}

// EscalationSink receives escalation audit records.
type EscalationSink interface {
	RecordEscalation(ctx context.Context, rec *types.EscalationRecord) error
}

// RunRecorder persists completed run results.
type RunRecorder interface {
	SaveRun(ctx context.Context, result *types.Result) error
}

// Config bounds the engine's retry and retrieval behavior.
type Config struct {
	// MaxRetries bounds redraft rounds; the count is 0-based and
	// incremented once per redraft.
	MaxRetries int
	// InitialK is the result count for the first retrieval; RefineK the
	// count per refined query; MergeLimit the cap after multi-query merge.
	InitialK   int
	RefineK    int
	MergeLimit int
	// ReviewFailClosed rejects drafts when the reviewer is unreachable
	// instead of auto-approving them. The zero value keeps the historical
	// fail-open behavior.
	ReviewFailClosed bool
}

// DefaultConfig returns the standard engine bounds.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 2,
		InitialK:   5,
		RefineK:    3,
		MergeLimit: 10,
	}
}

// Engine drives one ticket at a time through the pipeline. All adapter
// failures degrade to deterministic fallbacks; only a missing ticket is
// fatal. Engines are safe for concurrent Run calls: per-run state lives
// on the stack.
type Engine struct {
	classifier  Classifier
	drafter     Drafter
	reviewer    Reviewer
	refiner     QueryRefiner
	retriever   Retriever
	escalations EscalationSink // optional
	runs        RunRecorder    // optional
	cfg         Config
	now         func() time.Time
}

// New creates an engine. Escalation sink and run recorder may be nil, in
// which case those records are only logged.
func New(classifier Classifier, drafter Drafter, reviewer Reviewer, refiner QueryRefiner, retriever Retriever, cfg Config) *Engine {
	return &Engine{
		classifier: classifier,
		drafter:    drafter,
		reviewer:   reviewer,
		refiner:    refiner,
		retriever:  retriever,
		cfg:        cfg,
		now:        time.Now,
	}
}

// WithEscalationSink attaches the escalation audit sink.
func (e *Engine) WithEscalationSink(sink EscalationSink) *Engine {
	e.escalations = sink
	return e
}

// WithRunRecorder attaches the run-history recorder.
func (e *Engine) WithRunRecorder(rec RunRecorder) *Engine {
	e.runs = rec
	return e
}

// Run processes one ticket to termination and returns the result. The
// only error condition is a missing or empty ticket; every downstream
// failure is absorbed into the documented fallbacks.
func (e *Engine) Run(ctx context.Context, ticket *types.Ticket) (*types.Result, error) {
	if ticket == nil || (ticket.Subject == "" && ticket.Description == "") {
		return nil, fmt.Errorf("no ticket provided")
	}

	state := &types.WorkflowState{
		Ticket:    ticket,
		StartedAt: e.now(),
	}
	slog.Info("processing ticket", "stage", StageInput, "ticketID", ticket.TicketID, "subject", excerpt(ticket.Subject, 50))

	e.classify(ctx, state)
	e.retrieve(ctx, state)
	e.draft(ctx, state)

	for {
		e.review(ctx, state)

		switch e.decide(state) {
		case decisionFinalize:
			e.finalize(state)
			return e.complete(ctx, state), nil
		case decisionEscalate:
			e.escalate(ctx, state)
			return e.complete(ctx, state), nil
		case decisionRetry:
			e.retry(ctx, state)
		}
	}
}

// classify sets the ticket's category. Failure degrades to the general
// category at half confidence, with the error kept as the reasoning.
func (e *Engine) classify(ctx context.Context, state *types.WorkflowState) {
	slog.Info("classifying ticket", "stage", StageClassify, "ticketID", state.Ticket.TicketID)

	classification, err := e.classifier.Classify(ctx, *state.Ticket)
	if err != nil {
		slog.Error("classification failed, using fallback", "ticketID", state.Ticket.TicketID, "error", err)
		classification = &types.Classification{
			Category:   types.CategoryGeneral,
			Confidence: 0.5,
			Reasoning:  err.Error(),
		}
	}
	state.Classification = classification
	slog.Info("ticket classified",
		"stage", StageClassify,
		"category", classification.Category,
		"confidence", classification.Confidence)
}

// retrieve performs the initial knowledge-base search.
func (e *Engine) retrieve(ctx context.Context, state *types.WorkflowState) {
	category := state.Classification.Category
	query := state.Ticket.Query()
	slog.Info("retrieving context", "stage", StageRetrieve, "category", category)

	result := e.retriever.Search(ctx, query, category, e.cfg.InitialK)
	if result == nil {
		result = &types.RetrievalResult{
			Documents: []string{
				fmt.Sprintf("General assistance for %s issues. Please contact support for specific help.", category),
			},
			Metadata: types.RetrievalMetadata{
				Category:  category,
				QueryUsed: query,
				Error:     "retriever returned no result",
			},
		}
	}
	state.Retrieval = result
	slog.Info("context retrieved", "stage", StageRetrieve, "documents", len(result.Documents))
}

// draft generates the first response draft. Failure degrades to the
// fixed apology message.
func (e *Engine) draft(ctx context.Context, state *types.WorkflowState) {
	slog.Info("generating draft", "stage", StageDraft, "ticketID", state.Ticket.TicketID)

	content, err := e.drafter.Draft(ctx, ai.DraftRequest{
		Ticket:   *state.Ticket,
		Category: state.Classification.Category,
		Context:  state.Retrieval.ContextText(),
	})
	if err != nil {
		slog.Error("draft generation failed, using fallback", "ticketID", state.Ticket.TicketID, "error", err)
		content = fallbackDraftMessage
	}
	e.appendDraft(state, content)
	slog.Info("draft generated", "stage", StageDraft, "version", state.CurrentDraft.Version, "chars", len(content))
}

// review judges the current draft against the initial retrieval context.
// Redrafts are written from the refined context, but the reviewer always
// sees the original one. When the reviewer is unreachable, the failure
// policy decides: fail-open approves the draft, fail-closed rejects it
// and pushes the ticket toward escalation.
func (e *Engine) review(ctx context.Context, state *types.WorkflowState) {
	slog.Info("reviewing draft", "stage", StageReview, "version", state.CurrentDraft.Version)

	review, err := e.reviewer.Review(ctx, *state.Ticket, state.Classification.Category,
		state.CurrentDraft.Content, state.Retrieval.ContextText())
	if err != nil {
		if e.cfg.ReviewFailClosed {
			slog.Error("review failed, rejecting (fail-closed)", "ticketID", state.Ticket.TicketID, "error", err)
			review = &types.Review{Approved: false, Score: 0, Feedback: failClosedFeedback, Issues: []string{}}
		} else {
			slog.Error("review failed, auto-approving (fail-open)", "ticketID", state.Ticket.TicketID, "error", err)
			review = &types.Review{Approved: true, Score: 0.7, Feedback: failOpenFeedback, Issues: []string{}}
		}
	}
	state.AllReviews = append(state.AllReviews, *review)

	verdict := "REJECTED"
	if review.Approved {
		verdict = "APPROVED"
	}
	slog.Info("review complete", "stage", StageReview, "verdict", verdict, "score", review.Score)
}

// decide routes after a review, in strict precedence order.
func (e *Engine) decide(state *types.WorkflowState) decision {
	review := state.LastReview()
	if review == nil {
		slog.Warn("no review result, escalating", "ticketID", state.Ticket.TicketID)
		return decisionEscalate
	}
	if review.Approved {
		return decisionFinalize
	}
	if state.RetryCount >= e.cfg.MaxRetries {
		slog.Info("max retries reached, escalating",
			"ticketID", state.Ticket.TicketID,
			"retryCount", state.RetryCount,
			"maxRetries", e.cfg.MaxRetries)
		return decisionEscalate
	}
	slog.Info("draft rejected, retrying",
		"ticketID", state.Ticket.TicketID,
		"attempt", state.RetryCount+1,
		"maxRetries", e.cfg.MaxRetries)
	return decisionRetry
}

// retry runs one refinement round: refined queries, refined retrieval,
// and a redraft. The retry count increments exactly once, in the redraft
// step, whether or not the redraft itself succeeded.
func (e *Engine) retry(ctx context.Context, state *types.WorkflowState) {
	feedback := state.LastReview().Feedback
	category := state.Classification.Category
	query := state.Ticket.Query()

	// Refined queries. Model failure falls back to heuristic phrasings of
	// the original query.
	slog.Info("refining queries", "stage", StageRetryQuery, "ticketID", state.Ticket.TicketID)
	queries, err := e.refiner.RefineQueries(ctx, query, category, feedback)
	if err != nil {
		slog.Warn("query refinement failed, using heuristic queries", "error", err)
		queries = ai.HeuristicQueries(query, feedback)
	}
	state.RefinedQueries = queries
	slog.Info("queries refined", "stage", StageRetryQuery, "count", len(queries))

	// Refined retrieval. An empty merge keeps the previous context rather
	// than wiping it.
	slog.Info("refining context", "stage", StageRetryContext, "queries", len(queries))
	refined := e.retriever.MultiSearch(ctx, queries, category, e.cfg.RefineK, e.cfg.MergeLimit)
	if refined == nil || len(refined.Documents) == 0 {
		slog.Warn("refined retrieval returned nothing, keeping previous context", "category", category)
	} else {
		state.RefinedRetrieval = refined
	}

	// Redraft.
	slog.Info("generating redraft", "stage", StageRedraft, "retry", state.RetryCount+1)
	content, err := e.drafter.Redraft(ctx, ai.DraftRequest{
		Ticket:        *state.Ticket,
		Category:      category,
		Context:       state.ActiveContext().ContextText(),
		PreviousDraft: state.CurrentDraft.Content,
		Feedback:      feedback,
	})
	if err != nil {
		slog.Error("redraft generation failed, using fallback", "ticketID", state.Ticket.TicketID, "error", err)
		content = fallbackRedraftMessage
	}
	e.appendDraft(state, content)
	state.RetryCount++
	slog.Info("redraft generated", "stage", StageRedraft, "version", state.CurrentDraft.Version, "retryCount", state.RetryCount)
}

// escalate terminates the run on the human-handoff path, recording the
// audit trail and substituting the escalation message as the response.
func (e *Engine) escalate(ctx context.Context, state *types.WorkflowState) {
	reason := reasonMaxRetries
	if state.LastReview() == nil {
		reason = reasonNoReview
	}
	slog.Warn("escalating ticket",
		"stage", StageEscalate,
		"ticketID", state.Ticket.TicketID,
		"retryCount", state.RetryCount,
		"reason", reason)

	state.Escalated = true
	state.EscalationReason = reason
	state.FinalResponse = escalationMessage
	state.EndedAt = e.now()

	rec := types.NewEscalationRecord(state, reason, state.EndedAt)
	if e.escalations != nil {
		if err := e.escalations.RecordEscalation(ctx, rec); err != nil {
			slog.Error("failed to record escalation", "ticketID", rec.TicketID, "error", err)
		}
	} else {
		slog.Info("escalation recorded (log only)", "ticketID", rec.TicketID, "reason", rec.Reason)
	}
}

// finalize terminates the run on the approved path.
func (e *Engine) finalize(state *types.WorkflowState) {
	state.FinalResponse = state.CurrentDraft.Content
	state.EndedAt = e.now()
	slog.Info("ticket resolved",
		"stage", StageFinalize,
		"ticketID", state.Ticket.TicketID,
		"seconds", fmt.Sprintf("%.2f", state.ElapsedSeconds()))
}

// complete builds the result summary and persists it if a recorder is
// attached.
func (e *Engine) complete(ctx context.Context, state *types.WorkflowState) *types.Result {
	result := &types.Result{
		TicketID:          state.Ticket.TicketID,
		Subject:           state.Ticket.Subject,
		Description:       state.Ticket.Description,
		Category:          state.Classification.Category,
		FinalResponse:     state.FinalResponse,
		Escalated:         state.Escalated,
		EscalationReason:  state.EscalationReason,
		RetryCount:        state.RetryCount,
		ProcessingSeconds: state.ElapsedSeconds(),
		DraftsGenerated:   len(state.AllDrafts),
		ReviewsConducted:  len(state.AllReviews),
		Drafts:            state.AllDrafts,
		Reviews:           state.AllReviews,
		CreatedAt:         state.EndedAt,
	}

	if e.runs != nil {
		if err := e.runs.SaveRun(ctx, result); err != nil {
			slog.Error("failed to save run", "ticketID", result.TicketID, "error", err)
		}
	}
	return result
}

// excerpt shortens a string for log lines.
func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// appendDraft records a new draft version.
func (e *Engine) appendDraft(state *types.WorkflowState, content string) {
	draft := types.Draft{
		Content:   content,
		Version:   len(state.AllDrafts) + 1,
		CreatedAt: e.now(),
	}
	state.AllDrafts = append(state.AllDrafts, draft)
	state.CurrentDraft = &state.AllDrafts[len(state.AllDrafts)-1]
}
