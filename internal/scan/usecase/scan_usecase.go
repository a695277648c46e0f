package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	mailconnusecase "jobpulse-backend/internal/mailconn/usecase"
	"jobpulse-backend/internal/metrics"
	scandomain "jobpulse-backend/internal/scan/domain"
	scanrepo "jobpulse-backend/internal/scan/repository"

	jobusecase "jobpulse-backend/internal/job/usecase"
	"jobpulse-backend/pkg/ai"
	"jobpulse-backend/pkg/mailprovider"
)

// ErrScanNotFound is re-exported so handlers depend on the usecase only
var ErrScanNotFound = scanrepo.ErrScanNotFound

const (
	defaultLatestLimit = 50
	maxLatestLimit     = 60
)

// Options tune the engine; zero values are replaced with defaults
type Options struct {
	BatchSize    int
	BodyMaxChars int
	Rules        mailprovider.RangeRules
}

// scanUsecase implements ScanUsecase
type scanUsecase struct {
	scans     scanrepo.ScanRepository
	broker    *mailconnusecase.Broker
	newClient mailprovider.Factory
	analyzer  ai.Analyzer
	ingestion jobusecase.IngestionUsecase
	metrics   *metrics.Metrics
	log       *logrus.Logger
	opts      Options
}

// NewScanUsecase creates a new instance of scanUsecase
func NewScanUsecase(
	scans scanrepo.ScanRepository,
	broker *mailconnusecase.Broker,
	newClient mailprovider.Factory,
	analyzer ai.Analyzer,
	ingestion jobusecase.IngestionUsecase,
	m *metrics.Metrics,
	log *logrus.Logger,
	opts Options,
) ScanUsecase {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.Rules.MaxDays <= 0 {
		opts.Rules.MaxDays = 90
	}
	if opts.Rules.MaxMessages <= 0 {
		opts.Rules.MaxMessages = 2000
	}
	if log == nil {
		log = logrus.New()
	}
	return &scanUsecase{
		scans:     scans,
		broker:    broker,
		newClient: newClient,
		analyzer:  analyzer,
		ingestion: ingestion,
		metrics:   m,
		log:       log,
		opts:      opts,
	}
}

// withClient runs fn against the user's provider client, refreshing the
// access token and retrying once on 401 via the broker.
func withClient[T any](ctx context.Context, u *scanUsecase, userID string, fn func(mailprovider.Client) (T, error)) (T, error) {
	return mailconnusecase.WithMailAccess(ctx, u.broker, userID, func(a mailconnusecase.Access) (T, error) {
		client, err := u.newClient(ctx, a.Provider, a.AccessToken)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(client)
	})
}

func (u *scanUsecase) ValidateRange(ctx context.Context, userID, startISO, endISO string) (*mailprovider.RangeResult, error) {
	return withClient(ctx, u, userID, func(c mailprovider.Client) (*mailprovider.RangeResult, error) {
		return c.ValidateRange(ctx, startISO, endISO, u.opts.Rules)
	})
}

func (u *scanUsecase) ListMessageIDs(ctx context.Context, userID, startISO, endISO string) (*mailprovider.RangeResult, error) {
	return withClient(ctx, u, userID, func(c mailprovider.Client) (*mailprovider.RangeResult, error) {
		return c.GetAllMessageIDsInRange(ctx, startISO, endISO, u.opts.Rules.MaxMessages)
	})
}

func (u *scanUsecase) Init(ctx context.Context, userID string, params InitParams) (*InitResult, error) {
	active, err := u.scans.FindActiveScan(userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return &InitResult{Mode: ModeExisting, Scan: active}, nil
	}

	access, err := u.broker.GetAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ids []string
	if params.StartISO != "" || params.EndISO != "" {
		res, err := u.ValidateRange(ctx, userID, params.StartISO, params.EndISO)
		if err != nil {
			return nil, err
		}
		if !res.OK {
			return &InitResult{Range: res}, nil
		}
		ids = res.IDs
	} else {
		limit := params.Limit
		if limit <= 0 {
			limit = defaultLatestLimit
		}
		if limit > maxLatestLimit {
			limit = maxLatestLimit
		}
		latest, err := withClient(ctx, u, userID, func(c mailprovider.Client) ([]mailprovider.RawMail, error) {
			return c.GetLatestMails(ctx, limit)
		})
		if err != nil {
			return nil, err
		}
		for _, m := range latest {
			if m.ID != "" {
				ids = append(ids, m.ID)
			}
		}
	}

	scan := &scandomain.Scan{
		UserID:         userID,
		Provider:       string(access.Provider),
		Status:         scandomain.StatusCreated,
		MessageIDs:     scandomain.StringArray(ids),
		ProcessedCount: 0,
		TotalCount:     len(ids),
		ShouldContinue: len(ids) > 0,
	}
	if err := u.scans.Create(scan); err != nil {
		return nil, err
	}
	if u.metrics != nil {
		u.metrics.ScansStarted.Inc()
	}

	u.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"scan_id":  scan.ID,
		"provider": scan.Provider,
		"total":    scan.TotalCount,
	}).Info("scan created")

	return &InitResult{Mode: ModeCreated, Scan: scan}, nil
}

func (u *scanUsecase) RunBatch(ctx context.Context, userID, scanID string) (*BatchResult, error) {
	scan, err := u.getScan(userID, scanID)
	if err != nil {
		return nil, err
	}

	if scan.Status.IsTerminal() {
		return &BatchResult{Scan: scan, Done: true}, nil
	}

	// created and paused auto-resume
	if scan.Status != scandomain.StatusRunning {
		running := scandomain.StatusRunning
		scan, err = u.scans.Update(userID, scanID, scanrepo.ScanPatch{Status: &running})
		if err != nil {
			return nil, err
		}
	}

	start := scan.ProcessedCount
	end := start + u.opts.BatchSize
	if end > scan.TotalCount {
		end = scan.TotalCount
	}

	// Cursor already at the end: nothing left to process.
	if start >= end {
		return u.finalize(userID, scanID, scandomain.StatusCompleted, nil, 0, 0)
	}

	slice := scan.MessageIDs[start:end]
	began := time.Now()
	stored := 0

	for _, messageID := range slice {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := u.processMessage(ctx, userID, scan.Provider, messageID)
		if err != nil {
			// Reauth is an auth signal, not a scan failure: the scan stays
			// resumable so the user can reconnect and retry the batch.
			if errors.Is(err, mailconnusecase.ErrReauthRequired) {
				return nil, err
			}
			u.log.WithFields(logrus.Fields{
				"user_id":    userID,
				"scan_id":    scanID,
				"message_id": messageID,
			}).WithError(err).Error("batch aborted")
			msg := err.Error()
			return u.finalize(userID, scanID, scandomain.StatusFailed, &msg, 0, stored)
		}
		if result.Stored {
			stored++
			if u.metrics != nil {
				u.metrics.JobEmailsStored.Inc()
			}
		}
		if u.metrics != nil {
			u.metrics.MailsProcessed.Inc()
		}
	}

	if u.metrics != nil {
		u.metrics.BatchDuration.Observe(time.Since(began).Seconds())
	}

	processed := end
	if processed >= scan.TotalCount {
		return u.finalize(userID, scanID, scandomain.StatusCompleted, nil, len(slice), stored)
	}

	cont := true
	scan, err = u.scans.Update(userID, scanID, scanrepo.ScanPatch{
		ProcessedCount: &processed,
		ShouldContinue: &cont,
	})
	if err != nil {
		return nil, err
	}
	return &BatchResult{Scan: scan, Processed: len(slice), Stored: stored}, nil
}

// processMessage fetches, analyzes and ingests one message
func (u *scanUsecase) processMessage(ctx context.Context, userID, provider, messageID string) (*jobusecase.IngestResult, error) {
	mail, err := withClient(ctx, u, userID, func(c mailprovider.Client) (*mailprovider.RawMail, error) {
		return c.GetRawMailByID(ctx, messageID, u.opts.BodyMaxChars)
	})
	if err != nil {
		return nil, err
	}

	analysis, err := u.analyzer.AnalyzeMail(ctx, ai.Mail{
		From:    mail.From,
		Subject: mail.Subject,
		Date:    mail.Date,
		Snippet: mail.Snippet,
		Body:    mail.Body,
	})
	if err != nil {
		return nil, err
	}
	if u.metrics != nil {
		u.metrics.TokensUsed.Add(float64(analysis.TokensUsed))
	}

	return u.ingestion.IngestAnalyzedMail(ctx, userID, provider, *mail, analysis)
}

func (u *scanUsecase) finalize(userID, scanID string, status scandomain.Status, errorMessage *string, processed, stored int) (*BatchResult, error) {
	scan, err := u.scans.Finalize(userID, scanID, status, errorMessage)
	if err != nil {
		return nil, err
	}
	if u.metrics != nil {
		switch status {
		case scandomain.StatusCompleted:
			u.metrics.ScansCompleted.Inc()
		case scandomain.StatusFailed:
			u.metrics.ScansFailed.Inc()
		case scandomain.StatusCanceled:
			u.metrics.ScansCanceled.Inc()
		}
	}
	return &BatchResult{Scan: scan, Processed: processed, Stored: stored, Done: true}, nil
}

func (u *scanUsecase) Pause(userID, scanID string) (*scandomain.Scan, error) {
	scan, err := u.getScan(userID, scanID)
	if err != nil {
		return nil, err
	}
	if scan.Status != scandomain.StatusRunning {
		return scan, nil
	}
	paused := scandomain.StatusPaused
	return u.scans.Update(userID, scanID, scanrepo.ScanPatch{Status: &paused})
}

func (u *scanUsecase) Cancel(userID, scanID string) (*scandomain.Scan, error) {
	scan, err := u.getScan(userID, scanID)
	if err != nil {
		return nil, err
	}
	if scan.Status.IsTerminal() {
		return scan, nil
	}
	res, err := u.finalize(userID, scanID, scandomain.StatusCanceled, nil, 0, 0)
	if err != nil {
		return nil, err
	}
	return res.Scan, nil
}

func (u *scanUsecase) Active(userID string) (*scandomain.Scan, error) {
	return u.scans.FindActiveScan(userID)
}

func (u *scanUsecase) Get(userID, scanID string) (*scandomain.Scan, error) {
	return u.getScan(userID, scanID)
}

func (u *scanUsecase) getScan(userID, scanID string) (*scandomain.Scan, error) {
	scan, err := u.scans.GetByIDForUser(userID, scanID)
	if err != nil {
		return nil, err
	}
	if scan == nil {
		return nil, ErrScanNotFound
	}
	return scan, nil
}
