package paymongo

import (
	"context"
	"log"
	"time"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/httpx"
)

// PollConfig bounds status polling. A redirect may span an arbitrary
// real-world delay, but polling after the return leg must not: once
// attempts are exhausted the source is declared abandoned rather than
// left in limbo.
type PollConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func DefaultPollConfig() *PollConfig {
	return &PollConfig{
		MaxAttempts:   10,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
	}
}

// WaitForPaid polls the source until the gateway reports a terminal
// status or attempts run out. The redirect query string is never
// consulted; only the gateway's answer counts. Transient poll errors
// consume an attempt and the loop continues.
func (c *Client) WaitForPaid(ctx context.Context, sourceID string, cfg *PollConfig) (domain.SourceStatus, error) {
	if cfg == nil {
		cfg = DefaultPollConfig()
	}

	delay := cfg.InitialDelay
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		status, err := c.GetSource(ctx, sourceID)
		switch {
		case err == nil && (status == domain.SourceStatusPaid || status.IsTerminal()):
			return status, nil
		case err != nil && !httpx.IsKind(err, httpx.KindTransient):
			return "", err
		case err != nil:
			log.Printf("poll attempt %d for source %v failed: %v", attempt, sourceID, err)
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	log.Printf("giving up on source %v after %d attempts, marking abandoned", sourceID, cfg.MaxAttempts)
	return domain.SourceStatusAbandoned, nil
}
