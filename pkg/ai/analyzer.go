package ai

import (
	"context"

	jobdomain "jobpulse-backend/internal/job/domain"
)

// Mail is the provider-neutral input handed to the analyzer.
type Mail struct {
	From    string
	Subject string
	Date    string
	Snippet string
	Body    string
}

// Analysis is the structured classification of a single mail.
// Company and Position are nil when the mail is not job related or the
// model could not extract them.
type Analysis struct {
	IsJobRelated bool
	Company      *string
	Position     *string
	Status       jobdomain.Status
	EventType    *string
	Confidence   float64
	Reasoning    *string
	TokensUsed   int
}

// Analyzer classifies a mail as job related or not and extracts the
// application fields. Implementations must return a normalized Analysis:
// canonical status, confidence in [0, 1], nil company/position when the
// mail is not job related.
type Analyzer interface {
	AnalyzeMail(ctx context.Context, mail Mail) (*Analysis, error)
}
