package mailprovider

import (
	"context"
	"errors"
	"fmt"
)

type Provider string

const (
	ProviderGmail   Provider = "gmail"
	ProviderOutlook Provider = "outlook"
)

func (p Provider) Valid() bool {
	return p == ProviderGmail || p == ProviderOutlook
}

// ErrUnauthorized is reported when the vendor API rejects the access token.
// The mail access broker reacts to it by refreshing the token and retrying
// the call exactly once.
var ErrUnauthorized = errors.New("mail provider: unauthorized")

// ErrUnknownProvider is reported for provider names outside the supported set.
var ErrUnknownProvider = errors.New("mail provider: unknown provider")

// Header is one raw message header.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RawMail is the normalized message shape both providers converge on.
type RawMail struct {
	ID      string   `json:"id"`
	From    string   `json:"from"`
	Subject string   `json:"subject"`
	Date    string   `json:"date"` // RFC 3339
	Snippet string   `json:"snippet"`
	Body    string   `json:"body"`
	Headers []Header `json:"headers"`
}

// RangeRules bound how much a single scan may enumerate.
type RangeRules struct {
	MaxDays     int
	MaxMessages int
}

const (
	ReasonInvalidRange    = "INVALID_RANGE"
	ReasonRangeTooLarge   = "RANGE_TOO_LARGE"
	ReasonTooManyMessages = "TOO_MANY_MESSAGES"
)

// RangeResult is a structured validation outcome, never an error: callers
// branch on OK/Reason before spending any quota.
type RangeResult struct {
	OK      bool     `json:"ok"`
	Reason  string   `json:"reason,omitempty"`
	Details string   `json:"details,omitempty"`
	Start   string   `json:"start,omitempty"`
	End     string   `json:"end,omitempty"`
	Days    int      `json:"days,omitempty"`
	Count   int      `json:"count"`
	IDs     []string `json:"ids,omitempty"`
}

// Client is the single contract both vendor integrations implement. Call
// sites depend only on this interface; the concrete client is selected once
// by New.
type Client interface {
	// ValidateRange checks the ISO date pair against the rules and, when the
	// span is acceptable, enumerates message identifiers up to
	// MaxMessages+1. Reaching the extra identifier yields TOO_MANY_MESSAGES
	// with Count = MaxMessages+1; enumeration never goes further.
	ValidateRange(ctx context.Context, startISO, endISO string, rules RangeRules) (*RangeResult, error)

	// GetAllMessageIDsInRange enumerates without the day-span check, used
	// once a range was already accepted.
	GetAllMessageIDsInRange(ctx context.Context, startISO, endISO string, maxMessages int) (*RangeResult, error)

	// GetRawMailByID fetches the full message and returns it normalized,
	// body truncated to maxChars.
	GetRawMailByID(ctx context.Context, messageID string, maxChars int) (*RawMail, error)

	// GetLatestMails fetches the most recent messages for ad-hoc connection
	// checks.
	GetLatestMails(ctx context.Context, limit int) ([]RawMail, error)
}

// Factory builds a Client for an access token. The scan engine and handlers
// take a Factory so tests can substitute fakes.
type Factory func(ctx context.Context, provider Provider, accessToken string) (Client, error)

// New selects the concrete client for a provider.
func New(ctx context.Context, provider Provider, accessToken string) (Client, error) {
	switch provider {
	case ProviderGmail:
		return NewGmailClient(ctx, accessToken)
	case ProviderOutlook:
		return NewOutlookClient(accessToken)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, provider)
	}
}
