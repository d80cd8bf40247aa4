// services/scheduler.go
package services

import (
	"log"
	"time"

	"receiptx/models"

	"github.com/go-co-op/gocron/v2"
)

// StartExpirySweeps deactivates boosts and purchased multipliers whose expiry has
// passed. Query-time filters already exclude them; the sweep keeps the active flag
// trustworthy for dashboards.
func (s *RewardService) StartExpirySweeps() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now()

			res := s.DB.Model(&models.UserBoost{}).
				Where("active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
				Update("active", false)
			if res.Error != nil {
				log.Printf("[Scheduler] Boost expiry sweep failed: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("✅ Deactivated %d expired boost(s)", res.RowsAffected)
			}

			res = s.DB.Model(&models.UserMultiplier{}).
				Where("active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
				Update("active", false)
			if res.Error != nil {
				log.Printf("[Scheduler] Multiplier expiry sweep failed: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("✅ Deactivated %d expired multiplier(s)", res.RowsAffected)
			}
		}),
	)
}
