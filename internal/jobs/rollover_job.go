package jobs

import (
	"context"
	"log"
	"time"

	"reading-club/internal/services"
)

type RolloverJob struct {
	service *services.WeekService
}

func NewRolloverJob(service *services.WeekService) *RolloverJob {
	return &RolloverJob{service: service}
}

// Start begins the periodic week rollover sweep: overdue weeks resolve,
// new calendar weeks open, and reminders go out even when nobody is
// hitting the API.
func (j *RolloverJob) Start(interval time.Duration) {
	go func() {
		// Run immediately on start
		ctx := context.Background()
		j.runOnce(ctx)

		// Then run periodically
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			j.runOnce(ctx)
		}
	}()
}

func (j *RolloverJob) runOnce(ctx context.Context) {
	result, err := j.service.RunWeeklyRollover(ctx, nil)
	if err != nil {
		log.Printf("Rollover error: %v", err)
		return
	}
	for _, f := range result.Failures {
		log.Printf("Rollover failed for group %s: %s", f.GroupID, f.Error)
	}
}
