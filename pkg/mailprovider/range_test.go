package mailprovider

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRangeRejectsInvalidDates(t *testing.T) {
	_, rejected := checkRange("not-a-date", "2025-01-10T00:00:00Z", 90)
	require.NotNil(t, rejected)
	assert.Equal(t, ReasonInvalidRange, rejected.Reason)

	_, rejected = checkRange("2025-01-01T00:00:00Z", "nope", 90)
	require.NotNil(t, rejected)
	assert.Equal(t, ReasonInvalidRange, rejected.Reason)
}

func TestCheckRangeRequiresEndStrictlyAfterStart(t *testing.T) {
	_, rejected := checkRange("2025-01-10T00:00:00Z", "2025-01-10T00:00:00Z", 90)
	require.NotNil(t, rejected)
	assert.Equal(t, ReasonInvalidRange, rejected.Reason)

	_, rejected = checkRange("2025-01-10T00:00:00Z", "2025-01-01T00:00:00Z", 90)
	require.NotNil(t, rejected)
	assert.Equal(t, ReasonInvalidRange, rejected.Reason)
}

func TestCheckRangeDaySpanBoundary(t *testing.T) {
	// Exactly maxDays is accepted.
	window, rejected := checkRange("2025-01-01T00:00:00Z", "2025-04-01T00:00:00Z", 90)
	require.Nil(t, rejected)
	assert.Equal(t, 90, window.days)

	// One day more is rejected.
	_, rejected = checkRange("2025-01-01T00:00:00Z", "2025-04-02T00:00:00Z", 90)
	require.NotNil(t, rejected)
	assert.Equal(t, ReasonRangeTooLarge, rejected.Reason)
	assert.Equal(t, 91, rejected.Days)
}

func TestCheckRangePartialDayRoundsUp(t *testing.T) {
	window, rejected := checkRange("2025-01-01T00:00:00Z", "2025-01-01T06:00:00Z", 90)
	require.Nil(t, rejected)
	assert.Equal(t, 1, window.days)
}

func TestCheckRangeSkipsSpanCheckWhenUnbounded(t *testing.T) {
	window, rejected := checkRange("2020-01-01T00:00:00Z", "2025-01-01T00:00:00Z", 0)
	require.Nil(t, rejected)
	assert.True(t, window.days > 1500)
}

func TestFinishEnumerationExactLimitAccepted(t *testing.T) {
	window, rejected := checkRange("2025-01-01T00:00:00Z", "2025-01-02T00:00:00Z", 90)
	require.Nil(t, rejected)

	ids := make([]string, 2000)
	for i := range ids {
		ids[i] = fmt.Sprintf("m%d", i)
	}

	res := finishEnumeration(window, ids, 2000)
	assert.True(t, res.OK)
	assert.Equal(t, 2000, res.Count)
	assert.Len(t, res.IDs, 2000)
}

func TestFinishEnumerationOneOverLimitRejected(t *testing.T) {
	window, rejected := checkRange("2025-01-01T00:00:00Z", "2025-01-02T00:00:00Z", 90)
	require.Nil(t, rejected)

	ids := make([]string, 2001)
	for i := range ids {
		ids[i] = fmt.Sprintf("m%d", i)
	}

	res := finishEnumeration(window, ids, 2000)
	assert.False(t, res.OK)
	assert.Equal(t, ReasonTooManyMessages, res.Reason)
	// The count signal is maxMessages+1, meaning "more than the limit".
	assert.Equal(t, 2001, res.Count)
	assert.Empty(t, res.IDs)
}

func TestProviderFactoryRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Provider("imap"), "tok")
	assert.Error(t, err)
}
