// Package types defines the core domain types for the support-ticket
// resolution engine: tickets, classifications, retrieval results, drafts,
// reviews, and the workflow state aggregate that ties them together.
package types

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Ticket is a customer support request. It is immutable once created;
// the engine never modifies it.
type Ticket struct {
	TicketID    string `json:"ticket_id"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// NewTicket creates a ticket, generating an ID when the caller did not
// provide one.
func NewTicket(subject, description, ticketID string) *Ticket {
	if ticketID == "" {
		ticketID = uuid.New().String()
	}
	return &Ticket{
		TicketID:    ticketID,
		Subject:     subject,
		Description: description,
	}
}

// Query returns the initial retrieval query for the ticket: the subject
// and description concatenated with a single space.
func (t *Ticket) Query() string {
	return fmt.Sprintf("%s %s", t.Subject, t.Description)
}

// Input length limits for ticket validation.
const (
	MinSubjectLen     = 5
	MaxSubjectLen     = 200
	MinDescriptionLen = 10
	MaxDescriptionLen = 5000
)

// Patterns rejected by validation. These catch the common HTML/JS injection
// vectors before ticket text is ever echoed back in a response.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script.*?>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// ValidateTicketInput checks subject and description against length limits
// and suspicious-content patterns. It returns the accumulated error messages;
// an empty slice means the input is valid.
func ValidateTicketInput(subject, description string) []string {
	var errs []string

	trimmed := strings.TrimSpace(subject)
	switch {
	case trimmed == "":
		errs = append(errs, "subject is required")
	case len(trimmed) < MinSubjectLen:
		errs = append(errs, fmt.Sprintf("subject must be at least %d characters", MinSubjectLen))
	case len(trimmed) > MaxSubjectLen:
		errs = append(errs, fmt.Sprintf("subject must be less than %d characters", MaxSubjectLen))
	}

	trimmed = strings.TrimSpace(description)
	switch {
	case trimmed == "":
		errs = append(errs, "description is required")
	case len(trimmed) < MinDescriptionLen:
		errs = append(errs, fmt.Sprintf("description must be at least %d characters", MinDescriptionLen))
	case len(trimmed) > MaxDescriptionLen:
		errs = append(errs, fmt.Sprintf("description must be less than %d characters", MaxDescriptionLen))
	}

	fullText := strings.ToLower(subject + " " + description)
	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(fullText) {
			errs = append(errs, "suspicious content detected")
			break
		}
	}

	return errs
}

// SanitizeText strips script tags, javascript: URLs, and inline event
// handlers from text, then normalizes whitespace.
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	for _, pattern := range suspiciousPatterns {
		text = pattern.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}
