package services

import (
	"context"
	"time"

	"github.com/clavisauth/clavis/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// Rate limit action namespaces. Each action has its own key space so a block
// on one never affects the other.
const (
	ActionRegister = "register"
	ActionLogin    = "login"
)

// RateLimiterService implements the fixed-window guard over a mark repository.
type RateLimiterService struct {
	repo   ports.RateLimitRepository
	window time.Duration
	logger *logrus.Logger
}

// RateLimiterConfig groups configuration parameters for the rate limiter.
type RateLimiterConfig struct {
	Window time.Duration
}

func NewRateLimiterService(repo ports.RateLimitRepository, cfg *RateLimiterConfig, logger *logrus.Logger) ports.RateLimiter {
	w := time.Minute
	if cfg != nil && cfg.Window > 0 {
		w = cfg.Window
	}
	return &RateLimiterService{repo: repo, window: w, logger: logger}
}

// Check reports whether the action is permitted. A store failure propagates
// to the caller; the whole request must fail rather than silently allow.
func (s *RateLimiterService) Check(ctx context.Context, action, clientID, targetID string) (bool, error) {
	blocked, err := s.repo.Exists(ctx, action, clientID, targetID)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"action": action, "client_id": clientID}).WithError(err).Error("rate limiter: failed to check mark")
		}
		return false, err
	}
	if blocked && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"action": action, "client_id": clientID, "target_id": targetID}).Debug("rate limiter: request denied")
	}
	return !blocked, nil
}

// Mark blocks the identity pair for the configured window.
func (s *RateLimiterService) Mark(ctx context.Context, action, clientID, targetID string) error {
	return s.repo.Mark(ctx, action, clientID, targetID, s.window)
}
