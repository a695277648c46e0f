package mailprovider

import (
	"fmt"
	"math"
	"time"
)

type rangeWindow struct {
	start time.Time
	end   time.Time
	days  int
}

// checkRange normalizes and validates an ISO date pair. A non-nil RangeResult
// means the pair was rejected; the window is only returned on acceptance.
// The end must be strictly after the start, and a span of exactly maxDays
// days is still accepted.
func checkRange(startISO, endISO string, maxDays int) (*rangeWindow, *RangeResult) {
	start, err := time.Parse(time.RFC3339, startISO)
	if err != nil {
		return nil, &RangeResult{
			OK:      false,
			Reason:  ReasonInvalidRange,
			Details: fmt.Sprintf("invalid start date: %v", err),
		}
	}
	end, err := time.Parse(time.RFC3339, endISO)
	if err != nil {
		return nil, &RangeResult{
			OK:      false,
			Reason:  ReasonInvalidRange,
			Details: fmt.Sprintf("invalid end date: %v", err),
		}
	}

	start = start.UTC()
	end = end.UTC()

	if !end.After(start) {
		return nil, &RangeResult{
			OK:      false,
			Reason:  ReasonInvalidRange,
			Details: "end must be strictly after start",
			Start:   start.Format(time.RFC3339),
			End:     end.Format(time.RFC3339),
		}
	}

	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if maxDays > 0 && days > maxDays {
		return nil, &RangeResult{
			OK:      false,
			Reason:  ReasonRangeTooLarge,
			Details: fmt.Sprintf("range spans %d days, maximum is %d", days, maxDays),
			Start:   start.Format(time.RFC3339),
			End:     end.Format(time.RFC3339),
			Days:    days,
		}
	}

	return &rangeWindow{start: start, end: end, days: days}, nil
}

// finishEnumeration turns an id list into the shared RangeResult shape. ids
// longer than maxMessages means the bounding (maxMessages+1)-th identifier
// was reached and the range carries too many messages.
func finishEnumeration(w *rangeWindow, ids []string, maxMessages int) *RangeResult {
	if maxMessages > 0 && len(ids) > maxMessages {
		return &RangeResult{
			OK:      false,
			Reason:  ReasonTooManyMessages,
			Details: fmt.Sprintf("more than %d messages in range", maxMessages),
			Start:   w.start.Format(time.RFC3339),
			End:     w.end.Format(time.RFC3339),
			Days:    w.days,
			Count:   maxMessages + 1,
		}
	}
	return &RangeResult{
		OK:    true,
		Start: w.start.Format(time.RFC3339),
		End:   w.end.Format(time.RFC3339),
		Days:  w.days,
		Count: len(ids),
		IDs:   ids,
	}
}
