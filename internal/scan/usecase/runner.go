package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	scandomain "jobpulse-backend/internal/scan/domain"
)

// Run drives the scan batch by batch until it is terminal. Stored state is
// re-read before every batch, so a pause or cancel issued concurrently takes
// effect at the next batch boundary. Processing inside each batch stays
// strictly sequential.
func (u *scanUsecase) Run(ctx context.Context, userID, scanID string) {
	log := u.log.WithFields(logrus.Fields{"user_id": userID, "scan_id": scanID})

	for {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("scan runner stopped")
			return
		}

		scan, err := u.scans.GetByIDForUser(userID, scanID)
		if err != nil {
			log.WithError(err).Error("scan runner failed to read state")
			return
		}
		if scan == nil || scan.Status.IsTerminal() {
			return
		}
		// A pause issued while the runner was mid-batch wins; resuming is an
		// explicit user action, never the runner's.
		if scan.Status == scandomain.StatusPaused {
			log.Info("scan paused, runner exiting")
			return
		}

		res, err := u.RunBatch(ctx, userID, scanID)
		if err != nil {
			log.WithError(err).Error("scan runner batch error")
			return
		}
		if res.Done {
			log.WithField("status", res.Scan.Status).Info("scan finished")
			return
		}
	}
}
