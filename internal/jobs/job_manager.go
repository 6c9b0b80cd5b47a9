package jobs

import (
	"fmt"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	offerExpiryJob *OfferExpiryJob
}

func NewJobManager(offerExpiryJob *OfferExpiryJob) *JobManager {
	return &JobManager{offerExpiryJob: offerExpiryJob}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.offerExpiryJob.Start(); err != nil {
		return fmt.Errorf("failed to start offer expiry job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs, waiting for running executions to finish.
func (jm *JobManager) StopAll() {
	jm.offerExpiryJob.Stop()
}
