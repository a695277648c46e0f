package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobusecase "jobpulse-backend/internal/job/usecase"
	mailconndomain "jobpulse-backend/internal/mailconn/domain"
	mailconnusecase "jobpulse-backend/internal/mailconn/usecase"
	scandomain "jobpulse-backend/internal/scan/domain"
	scanrepo "jobpulse-backend/internal/scan/repository"
	"jobpulse-backend/pkg/ai"
	"jobpulse-backend/pkg/mailprovider"
	"jobpulse-backend/pkg/oauth"
	"jobpulse-backend/pkg/tokencache"
)

type fakeScanRepo struct {
	scans  map[string]*scandomain.Scan
	nextID int
}

func newFakeScanRepo() *fakeScanRepo {
	return &fakeScanRepo{scans: map[string]*scandomain.Scan{}}
}

func (r *fakeScanRepo) FindActiveScan(userID string) (*scandomain.Scan, error) {
	var latest *scandomain.Scan
	for _, s := range r.scans {
		if s.UserID != userID || s.Status.IsTerminal() {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeScanRepo) GetByIDForUser(userID, scanID string) (*scandomain.Scan, error) {
	s, ok := r.scans[scanID]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeScanRepo) Create(scan *scandomain.Scan) error {
	if scan.ID == "" {
		r.nextID++
		scan.ID = fmt.Sprintf("scan-%d", r.nextID)
	}
	scan.CreatedAt = time.Now()
	cp := *scan
	r.scans[scan.ID] = &cp
	return nil
}

func (r *fakeScanRepo) Update(userID, scanID string, patch scanrepo.ScanPatch) (*scandomain.Scan, error) {
	s, ok := r.scans[scanID]
	if !ok || s.UserID != userID {
		return nil, scanrepo.ErrScanNotFound
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	if patch.MessageIDs != nil {
		s.MessageIDs = *patch.MessageIDs
	}
	if patch.ProcessedCount != nil {
		s.ProcessedCount = *patch.ProcessedCount
	}
	if patch.ShouldContinue != nil {
		s.ShouldContinue = *patch.ShouldContinue
	}
	if patch.ErrorMessage != nil {
		s.ErrorMessage = patch.ErrorMessage
	}
	cp := *s
	return &cp, nil
}

func (r *fakeScanRepo) Finalize(userID, scanID string, finalStatus scandomain.Status, errorMessage *string) (*scandomain.Scan, error) {
	s, ok := r.scans[scanID]
	if !ok || s.UserID != userID {
		return nil, scanrepo.ErrScanNotFound
	}
	s.Status = finalStatus
	s.ShouldContinue = false
	s.MessageIDs = scandomain.StringArray{}
	if finalStatus == scandomain.StatusCompleted {
		s.ProcessedCount = s.TotalCount
	}
	if finalStatus == scandomain.StatusFailed {
		msg := "UNKNOWN_ERROR"
		if errorMessage != nil && *errorMessage != "" {
			msg = *errorMessage
		}
		s.ErrorMessage = &msg
	}
	cp := *s
	return &cp, nil
}

type memConnRepo struct {
	conns map[string]*mailconndomain.MailConnection
}

func (r *memConnRepo) Get(userID string) (*mailconndomain.MailConnection, error) {
	c, ok := r.conns[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memConnRepo) Upsert(conn *mailconndomain.MailConnection) error {
	cp := *conn
	r.conns[conn.UserID] = &cp
	return nil
}

func (r *memConnRepo) Delete(userID string) error {
	delete(r.conns, userID)
	return nil
}

// fakeClient serves a fixed mailbox; failOn aborts fetching one message id
type fakeClient struct {
	ids    []string
	failOn map[string]error
}

func (c *fakeClient) ValidateRange(ctx context.Context, startISO, endISO string, rules mailprovider.RangeRules) (*mailprovider.RangeResult, error) {
	ids := c.ids
	if len(ids) > rules.MaxMessages {
		return &mailprovider.RangeResult{Reason: mailprovider.ReasonTooManyMessages, Count: rules.MaxMessages + 1}, nil
	}
	return &mailprovider.RangeResult{OK: true, Start: startISO, End: endISO, Count: len(ids), IDs: ids}, nil
}

func (c *fakeClient) GetAllMessageIDsInRange(ctx context.Context, startISO, endISO string, maxMessages int) (*mailprovider.RangeResult, error) {
	return &mailprovider.RangeResult{OK: true, Count: len(c.ids), IDs: c.ids}, nil
}

func (c *fakeClient) GetRawMailByID(ctx context.Context, messageID string, maxChars int) (*mailprovider.RawMail, error) {
	if err, ok := c.failOn[messageID]; ok {
		return nil, err
	}
	return &mailprovider.RawMail{
		ID:      messageID,
		From:    "hr@acme.com",
		Subject: "subject " + messageID,
		Date:    "2025-03-01T10:00:00Z",
		Body:    "body",
	}, nil
}

func (c *fakeClient) GetLatestMails(ctx context.Context, limit int) ([]mailprovider.RawMail, error) {
	out := make([]mailprovider.RawMail, 0, limit)
	for i, id := range c.ids {
		if i >= limit {
			break
		}
		out = append(out, mailprovider.RawMail{ID: id})
	}
	return out, nil
}

type fakeAnalyzer struct{}

func (fakeAnalyzer) AnalyzeMail(ctx context.Context, mail ai.Mail) (*ai.Analysis, error) {
	return &ai.Analysis{IsJobRelated: true, Status: "applied", Confidence: 0.8, TokensUsed: 100}, nil
}

type fakeIngestion struct {
	ingested []string
}

func (f *fakeIngestion) IngestAnalyzedMail(ctx context.Context, userID, provider string, mail mailprovider.RawMail, analysis *ai.Analysis) (*jobusecase.IngestResult, error) {
	f.ingested = append(f.ingested, mail.ID)
	return &jobusecase.IngestResult{Stored: true, JobEmailID: "e-" + mail.ID, ApplicationID: "a1"}, nil
}

func (f *fakeIngestion) RecomputeApplicationSummary(userID, applicationID string) error { return nil }
func (f *fakeIngestion) DeleteApplicationHard(userID, applicationID string) error       { return nil }
func (f *fakeIngestion) SetApplicationArchived(userID, applicationID string, archived bool) error {
	return nil
}

type engineFixture struct {
	scans     *fakeScanRepo
	client    *fakeClient
	ingestion *fakeIngestion
	usecase   ScanUsecase
}

func messageIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("m%d", i+1)
	}
	return ids
}

func newEngine(t *testing.T, mailboxSize int) *engineFixture {
	t.Helper()

	connRepo := &memConnRepo{conns: map[string]*mailconndomain.MailConnection{
		"u1": {UserID: "u1", Provider: "gmail", Email: "me@gmail.com", RefreshToken: "rt"},
	}}
	broker := mailconnusecase.NewBroker(connRepo, tokencache.New(16, time.Minute),
		map[mailprovider.Provider]oauth.RefreshFunc{
			mailprovider.ProviderGmail: func(ctx context.Context, refreshToken string) (string, error) {
				return "tok", nil
			},
		})

	client := &fakeClient{ids: messageIDs(mailboxSize), failOn: map[string]error{}}
	factory := func(ctx context.Context, provider mailprovider.Provider, accessToken string) (mailprovider.Client, error) {
		return client, nil
	}

	scans := newFakeScanRepo()
	ingestion := &fakeIngestion{}
	u := NewScanUsecase(scans, broker, factory, fakeAnalyzer{}, ingestion, nil, nil, Options{
		BatchSize: 10,
		Rules:     mailprovider.RangeRules{MaxDays: 90, MaxMessages: 2000},
	})

	return &engineFixture{scans: scans, client: client, ingestion: ingestion, usecase: u}
}

func initScan(t *testing.T, f *engineFixture) *scandomain.Scan {
	t.Helper()
	res, err := f.usecase.Init(context.Background(), "u1", InitParams{
		StartISO: "2025-01-01T00:00:00Z",
		EndISO:   "2025-02-01T00:00:00Z",
	})
	require.NoError(t, err)
	require.Equal(t, ModeCreated, res.Mode)
	return res.Scan
}

func TestInitSingleFlight(t *testing.T) {
	f := newEngine(t, 25)

	first := initScan(t, f)
	assert.Equal(t, scandomain.StatusCreated, first.Status)
	assert.Equal(t, 25, first.TotalCount)
	assert.True(t, first.ShouldContinue)

	second, err := f.usecase.Init(context.Background(), "u1", InitParams{
		StartISO: "2025-01-01T00:00:00Z",
		EndISO:   "2025-02-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, ModeExisting, second.Mode)
	assert.Equal(t, first.ID, second.Scan.ID)
	assert.Len(t, f.scans.scans, 1)
}

func TestInitEmptyMailbox(t *testing.T) {
	f := newEngine(t, 0)

	scan := initScan(t, f)
	assert.Equal(t, 0, scan.TotalCount)
	assert.False(t, scan.ShouldContinue)
}

func TestInitRejectedRange(t *testing.T) {
	f := newEngine(t, 2001)

	res, err := f.usecase.Init(context.Background(), "u1", InitParams{
		StartISO: "2025-01-01T00:00:00Z",
		EndISO:   "2025-02-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Nil(t, res.Scan)
	require.NotNil(t, res.Range)
	assert.Equal(t, mailprovider.ReasonTooManyMessages, res.Range.Reason)
	assert.Empty(t, f.scans.scans)
}

func TestInitLatestModeClampsLimit(t *testing.T) {
	f := newEngine(t, 100)

	res, err := f.usecase.Init(context.Background(), "u1", InitParams{Limit: 500})
	require.NoError(t, err)
	require.Equal(t, ModeCreated, res.Mode)
	assert.Equal(t, 60, res.Scan.TotalCount)
}

func TestListMessageIDs(t *testing.T) {
	f := newEngine(t, 25)

	res, err := f.usecase.ListMessageIDs(context.Background(), "u1", "2025-01-01T00:00:00Z", "2025-02-01T00:00:00Z")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 25, res.Count)
	assert.Equal(t, messageIDs(25), res.IDs)
}

func TestRunBatchAdvancesAndCompletes(t *testing.T) {
	f := newEngine(t, 25)
	scan := initScan(t, f)

	r1, err := f.usecase.RunBatch(context.Background(), "u1", scan.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, r1.Processed)
	assert.Equal(t, 10, r1.Scan.ProcessedCount)
	assert.Equal(t, scandomain.StatusRunning, r1.Scan.Status)
	assert.True(t, r1.Scan.ShouldContinue)
	assert.False(t, r1.Done)

	r2, err := f.usecase.RunBatch(context.Background(), "u1", scan.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, r2.Scan.ProcessedCount)

	r3, err := f.usecase.RunBatch(context.Background(), "u1", scan.ID)
	require.NoError(t, err)
	assert.True(t, r3.Done)
	assert.Equal(t, scandomain.StatusCompleted, r3.Scan.Status)
	assert.Equal(t, 25, r3.Scan.ProcessedCount)
	assert.False(t, r3.Scan.ShouldContinue)
	assert.Empty(t, r3.Scan.MessageIDs)

	// Order is exactly the captured identifier order.
	assert.Equal(t, messageIDs(25), f.ingestion.ingested)
}

func TestRunBatchOnTerminalScanIsNoOp(t *testing.T) {
	f := newEngine(t, 5)
	scan := initScan(t, f)

	_, err := f.usecase.Cancel("u1", scan.ID)
	require.NoError(t, err)

	res, err := f.usecase.RunBatch(context.Background(), "u1", scan.ID)
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, scandomain.StatusCanceled, res.Scan.Status)
	assert.Empty(t, f.ingestion.ingested)
}

func TestPauseAndResume(t *testing.T) {
	f := newEngine(t, 25)
	scan := initScan(t, f)

	// Pause before running is a no-op.
	s, err := f.usecase.Pause("u1", scan.ID)
	require.NoError(t, err)
	assert.Equal(t, scandomain.StatusCreated, s.Status)

	_, err = f.usecase.RunBatch(context.Background(), "u1", scan.ID)
	require.NoError(t, err)

	s, err = f.usecase.Pause("u1", scan.ID)
	require.NoError(t, err)
	assert.Equal(t, scandomain.StatusPaused, s.Status)
	assert.Equal(t, 10, s.ProcessedCount)

	// Resume picks up at the exact cursor.
	r, err := f.usecase.RunBatch(context.Background(), "u1", scan.ID)
	require.NoError(t, err)
	assert.Equal(t, scandomain.StatusRunning, r.Scan.Status)
	assert.Equal(t, 20, r.Scan.ProcessedCount)
	assert.Equal(t, messageIDs(25)[:20], f.ingestion.ingested)
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newEngine(t, 25)
	scan := initScan(t, f)

	s1, err := f.usecase.Cancel("u1", scan.ID)
	require.NoError(t, err)
	assert.Equal(t, scandomain.StatusCanceled, s1.Status)
	assert.False(t, s1.ShouldContinue)

	s2, err := f.usecase.Cancel("u1", scan.ID)
	require.NoError(t, err)
	assert.Equal(t, scandomain.StatusCanceled, s2.Status)
}

func TestBatchFailureFinalizesFailed(t *testing.T) {
	f := newEngine(t, 25)
	scan := initScan(t, f)

	_, err := f.usecase.RunBatch(context.Background(), "u1", scan.ID)
	require.NoError(t, err)

	f.client.failOn["m15"] = errors.New("gmail: backend error")

	res, err := f.usecase.RunBatch(context.Background(), "u1", scan.ID)
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, scandomain.StatusFailed, res.Scan.Status)
	require.NotNil(t, res.Scan.ErrorMessage)
	assert.Equal(t, "gmail: backend error", *res.Scan.ErrorMessage)
	// Cursor unchanged: the failed batch did not commit.
	assert.Equal(t, 10, res.Scan.ProcessedCount)
	assert.False(t, res.Scan.ShouldContinue)
}

func TestBatchReauthLeavesScanResumable(t *testing.T) {
	f := newEngine(t, 25)
	scan := initScan(t, f)

	f.client.failOn["m3"] = mailprovider.ErrUnauthorized

	_, err := f.usecase.RunBatch(context.Background(), "u1", scan.ID)
	assert.ErrorIs(t, err, mailconnusecase.ErrReauthRequired)

	s, err := f.usecase.Get("u1", scan.ID)
	require.NoError(t, err)
	assert.False(t, s.Status.IsTerminal())
	assert.Equal(t, 0, s.ProcessedCount)
}

func TestRunnerDrivesScanToCompletion(t *testing.T) {
	f := newEngine(t, 25)
	scan := initScan(t, f)

	f.usecase.Run(context.Background(), "u1", scan.ID)

	s, err := f.usecase.Get("u1", scan.ID)
	require.NoError(t, err)
	assert.Equal(t, scandomain.StatusCompleted, s.Status)
	assert.Equal(t, 25, s.ProcessedCount)
}

func TestScanNotFound(t *testing.T) {
	f := newEngine(t, 5)

	_, err := f.usecase.RunBatch(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, ErrScanNotFound)
	_, err = f.usecase.Pause("u1", "missing")
	assert.ErrorIs(t, err, ErrScanNotFound)
	_, err = f.usecase.Cancel("u1", "missing")
	assert.ErrorIs(t, err, ErrScanNotFound)
}
