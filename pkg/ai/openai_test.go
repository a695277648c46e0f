package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobdomain "jobpulse-backend/internal/job/domain"
)

func TestParseAnalysisJSON(t *testing.T) {
	a, err := parseAnalysisJSON([]byte(`{
		"isJobRelated": true,
		"company": "Acme",
		"position": "Backend Engineer",
		"status": "interviewing",
		"confidence": 0.92
	}`))
	require.NoError(t, err)
	assert.True(t, a.IsJobRelated)
	require.NotNil(t, a.Company)
	assert.Equal(t, "Acme", *a.Company)
	require.NotNil(t, a.Position)
	assert.Equal(t, "Backend Engineer", *a.Position)
	assert.Equal(t, jobdomain.StatusInterview, a.Status)
	assert.Equal(t, 0.92, a.Confidence)
}

func TestParseAnalysisJSONNotJobRelatedDropsFields(t *testing.T) {
	a, err := parseAnalysisJSON([]byte(`{
		"isJobRelated": false,
		"company": "LinkedIn",
		"position": "anything",
		"status": "applied",
		"confidence": 0.4
	}`))
	require.NoError(t, err)
	assert.False(t, a.IsJobRelated)
	assert.Nil(t, a.Company)
	assert.Nil(t, a.Position)
	assert.Equal(t, jobdomain.StatusUnknown, a.Status)
}

func TestParseAnalysisJSONClampsConfidence(t *testing.T) {
	a, err := parseAnalysisJSON([]byte(`{"isJobRelated": true, "status": "offer", "confidence": 1.8}`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.Confidence)
}

func TestParseAnalysisJSONRejectsMalformed(t *testing.T) {
	_, err := parseAnalysisJSON([]byte(`not json`))
	assert.Error(t, err)

	_, err = parseAnalysisJSON([]byte(`{"status": "applied", "confidence": 0.5}`))
	assert.Error(t, err)

	_, err = parseAnalysisJSON([]byte(`{"isJobRelated": true, "status": "applied"}`))
	assert.Error(t, err)
}

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages(Mail{From: "hr@acme.com", Subject: "Your application", Date: "2025-03-01T10:00:00Z", Body: "Thanks for applying"})
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "user", msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "From: hr@acme.com")
	assert.Contains(t, msgs[1].Content, "Thanks for applying")
}
