package application

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler invokes the publish function on a fixed interval until its
// context is cancelled. Every failure is logged and swallowed so a bad tick
// never takes the process down.
type Scheduler struct {
	interval time.Duration
	publish  func(context.Context) error
}

// NewScheduler builds a scheduler around a publish function.
func NewScheduler(interval time.Duration, publish func(context.Context) error) *Scheduler {
	return &Scheduler{
		interval: interval,
		publish:  publish,
	}
}

// Run blocks until ctx is cancelled. The first tick fires after one full
// interval; there is no catch-up for missed ticks.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("publish tick panicked")
		}
	}()

	if err := s.publish(ctx); err != nil {
		log.Error().
			Err(err).
			Str("type", fmt.Sprintf("%T", err)).
			Msg("publish tick failed")
	}
}
