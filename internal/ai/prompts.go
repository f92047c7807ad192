package ai

import (
	"fmt"
	"strings"

	"github.com/resolvd/resolvd/internal/types"
)

// buildClassificationPrompt builds the prompt for ticket classification.
func buildClassificationPrompt(ticket types.Ticket) string {
	return fmt.Sprintf(`You are a support ticket classifier. Analyze the following support ticket and classify it into one of these categories:

Categories:
- billing: Payment issues, subscription problems, refunds, pricing questions
- technical: Bug reports, feature requests, API issues, system problems
- security: Account security, data privacy, suspicious activity, access issues
- general: General inquiries, company information, feedback, other

Ticket:
Subject: %s
Description: %s

Provide your classification in this exact JSON format:
{
    "category": "one of: billing, technical, security, general",
    "confidence": 0.0-1.0,
    "reasoning": "brief explanation of why you chose this category"
}

Be decisive and choose the most appropriate category even if the ticket could fit multiple categories.`,
		ticket.Subject, ticket.Description)
}

// draftRules are shared between the initial draft and redraft prompts.
const draftRules = `CRITICAL RULES:
1. Use ONLY information explicitly stated in the provided context
2. If the context lacks information for a specific question, acknowledge this and suggest escalation
3. DO NOT create, infer, or assume any information not directly stated
4. If uncertain about any detail, state this clearly rather than guessing
5. Present information naturally without referencing "the context" or "provided information"
6. If insufficient information exists, respond: "I need to escalate this query as I don't have enough information to provide an accurate answer."

Response Guidelines:
1. Be professional, empathetic, and helpful
2. Write in a natural, conversational tone
3. Structure responses clearly with proper formatting
4. Use specific details from the available information when relevant
5. Be transparent about limitations when information is missing
6. Never speculate or provide information beyond what's available
7. Sign off as "Sarah Chen" instead of "[Your Name]"`

// buildDraftPrompt builds the prompt for the initial draft.
func buildDraftPrompt(ticket types.Ticket, category types.Category, context string) string {
	return fmt.Sprintf(`You are Sarah Chen, a professional customer support agent. Write a natural, helpful response using ONLY the information provided in the context. Do not mention "based on the context" or similar phrases - just provide the information naturally.

Support Ticket:
Subject: %s
Description: %s
Category: %s

Available Information:
%s

%s

Write your response:`,
		ticket.Subject, ticket.Description, category, context, draftRules)
}

// buildRedraftPrompt builds the prompt for an improved draft that addresses
// reviewer feedback, with the refined retrieval context.
func buildRedraftPrompt(ticket types.Ticket, category types.Category, previousDraft, feedback, context string) string {
	return fmt.Sprintf(`You are Sarah Chen, a professional customer support agent. Write an improved response using ONLY the information provided in the context, while addressing the reviewer's feedback. Do not mention "based on the context" or similar phrases - just provide the information naturally.

Support Ticket:
Subject: %s
Description: %s
Category: %s

Previous Response:
%s

Reviewer Feedback:
%s

Updated Information:
%s

%s

Redraft Guidelines:
1. Address each point of feedback from the reviewer explicitly
2. Compare your new response against the previous draft to ensure all valid information is preserved
3. If the reviewer's feedback cannot be addressed using the available information, acknowledge this and recommend escalation
4. Ensure any corrections maintain strict adherence to the available information
5. If the feedback asks for information not present in the context, explicitly state this limitation
6. Maintain the natural, conversational tone without referencing "the context"

Write your improved response:`,
		ticket.Subject, ticket.Description, category, previousDraft, feedback, context, draftRules)
}

// buildReviewPrompt builds the prompt for reviewing a draft response.
func buildReviewPrompt(ticket types.Ticket, category types.Category, draft, context string) string {
	return fmt.Sprintf(`You are a quality assurance reviewer for customer support responses.
Evaluate the following response for quality, accuracy, and policy compliance.

Support Ticket:
Subject: %s
Description: %s
Category: %s

Draft Response:
%s

Context Used:
%s

Review Criteria:
1. Accuracy: Is the information correct and relevant?
2. Helpfulness: Does it address the customer's concern?
3. Policy Compliance: No unauthorized refunds/account changes, proper escalation
4. Tone: Professional, empathetic, and customer-friendly
5. Completeness: Are all aspects of the question addressed?

Provide your review in this exact JSON format:
{
    "approved": true/false,
    "score": 0.0-1.0,
    "feedback": "detailed feedback explaining your decision",
    "issues": ["list", "of", "specific", "issues", "if", "any"]
}

Be thorough in your evaluation and provide constructive feedback for improvement.`,
		ticket.Subject, ticket.Description, category, draft, context)
}

// buildQueryRefinementPrompt builds the prompt for generating improved
// search queries after a rejected draft.
func buildQueryRefinementPrompt(query string, category types.Category, feedback string) string {
	return fmt.Sprintf(`You are an expert at analyzing support ticket feedback and generating improved search queries to find better documentation.

**Original Support Ticket:**
Previous query: %s

Category: %s

**Reviewer Feedback:**
%s

**Current Challenge:**
The initial response was not satisfactory based on the reviewer's feedback. Your job is to analyze what went wrong and generate 3-5 different search queries that will find better, more relevant documentation.

**Analysis Instructions:**
1. **Identify Missing Information**: What specific details, steps, or concepts does the feedback indicate are missing?
2. **Identify Wrong Focus**: What aspects of the original query led to irrelevant results?
3. **Extract Key Terms**: What important technical terms, features, or processes should be emphasized?
4. **Consider User Intent**: What is the user actually trying to accomplish?

**Query Generation Guidelines:**
- Generate 3-5 diverse search queries
- Each query should target different aspects of the problem
- Include specific technical terms when mentioned in feedback
- Use different query styles: direct questions, troubleshooting terms, solution-focused
- Avoid generic terms that led to poor results initially

**Response Format:**
Return your response as a JSON object with this exact structure:
{
    "refined_queries": [
        "First refined search query targeting specific missing info",
        "Second query focusing on troubleshooting aspects",
        "Third query emphasizing solution/resolution",
        "Fourth query with alternative technical terms",
        "Fifth query focusing on step-by-step guidance"
    ]
}

**Example Query Styles to Consider:**
- Direct: "how to configure email settings mobile app"
- Troubleshooting: "email sync not working mobile troubleshooting"
- Solution-focused: "fix email connection issues mobile"
- Process-oriented: "step by step email setup mobile app"
- Error-specific: "email authentication failed mobile app"

Generate queries that will retrieve documentation addressing the reviewer's specific concerns.`,
		query, category, feedback)
}

// joinIssues formats a review's issue list for logging.
func joinIssues(issues []string) string {
	if len(issues) == 0 {
		return "none"
	}
	return strings.Join(issues, "; ")
}
