// Package jobs provides scheduled background tasks for the relocation service.
//
// Jobs are built on github.com/robfig/cron/v3 with second-level schedules.
//
// # Available Jobs
//
// OfferExpiryJob expires driver offers that stayed PENDING longer than the offer TTL.
// It runs OFFER_SWEEP_SCHEDULE (default every 30 seconds). Each affected job is swept in
// its own transaction, so a job that is locked by a concurrent decision is only delayed
// until the next run.
//
// # Usage
//
//	expiry := jobs.NewOfferExpiryJob(handler, cfg.OfferTTL, cfg.OfferSweepSchedule, loc, logger)
//	jobManager := jobs.NewJobManager(expiry)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
package jobs
