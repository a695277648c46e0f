package domain

import "strings"

// Status is a job application lifecycle stage, for a single email and for
// the aggregate application.
type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusRejection Status = "rejection"
	StatusOffer     Status = "offer"
)

var statusRank = map[Status]int{
	StatusUnknown:   0,
	StatusApplied:   10,
	StatusInterview: 20,
	StatusRejection: 30,
	StatusOffer:     30,
}

func (s Status) Rank() int {
	return statusRank[s]
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// NormalizeStatus maps free-form model output onto the five canonical
// statuses. Unrecognized values become unknown rather than an error.
func NormalizeStatus(raw string) Status {
	s := strings.ToLower(strings.TrimSpace(raw))

	switch Status(s) {
	case StatusApplied, StatusInterview, StatusRejection, StatusOffer, StatusUnknown:
		return Status(s)
	}

	switch {
	case s == "rejected" || s == "reject" || s == "declined" || strings.Contains(s, "not selected"):
		return StatusRejection
	case strings.Contains(s, "interview") || strings.Contains(s, "screen") ||
		strings.Contains(s, "phone") || strings.Contains(s, "assessment"):
		return StatusInterview
	case strings.Contains(s, "offer") || strings.Contains(s, "contract"):
		return StatusOffer
	case strings.Contains(s, "appl") || strings.Contains(s, "submitted") || strings.Contains(s, "received"):
		return StatusApplied
	}

	return StatusUnknown
}

// ComputeApplicationStatus reduces member email statuses to the aggregate
// application status. The highest-ranked status wins regardless of input
// order; rejection and offer share the top rank, and an application holding
// both resolves to offer.
func ComputeApplicationStatus(statuses []Status) Status {
	best := StatusUnknown
	for _, s := range statuses {
		if s.Rank() > best.Rank() || (s == StatusOffer && best == StatusRejection) {
			best = s
		}
	}
	return best
}

// Clamp01 bounds a model confidence score to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
