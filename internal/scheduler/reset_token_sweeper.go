package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf-popaccueil/popaccueil-backend/internal/metrics"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
)

// ExpiredResetTokenStore is implemented by repository.UserRepository.
type ExpiredResetTokenStore interface {
	ClearExpiredResetTokens(now time.Time) (int64, error)
}

// ResetTokenSweeper periodically nulls reset tokens past their expiry. Expired
// tokens are already rejected on use; sweeping keeps the column meaningful.
type ResetTokenSweeper struct {
	cron  *cron.Cron
	spec  string
	store ExpiredResetTokenStore
	now   func() time.Time
}

// NewResetTokenSweeper builds a sweeper running on spec, e.g. "@every 15m".
func NewResetTokenSweeper(store ExpiredResetTokenStore, spec string) *ResetTokenSweeper {
	return &ResetTokenSweeper{
		cron:  cron.New(),
		spec:  spec,
		store: store,
		now:   time.Now,
	}
}

func (s *ResetTokenSweeper) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(); err != nil {
			logger.Error("Scheduled reset token sweep failed", err)
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for reset token sweep", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Reset token sweeper started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce performs one sweep and returns how many tokens were cleared.
func (s *ResetTokenSweeper) RunOnce() (int64, error) {
	cleared, err := s.store.ClearExpiredResetTokens(s.now())
	if err != nil {
		return 0, err
	}
	metrics.ResetTokensSweptTotal.Add(float64(cleared))
	return cleared, nil
}

// Stop waits for a running sweep to finish.
func (s *ResetTokenSweeper) Stop() {
	logger.Info("Stopping reset token sweeper...")
	<-s.cron.Stop().Done()
	logger.Info("Reset token sweeper stopped")
}
