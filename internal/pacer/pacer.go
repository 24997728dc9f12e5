// Package pacer implements token bucket pacing for API etiquette.
//
// The original crawl loop slept a fixed interval after every category and
// every processed page. Token buckets keep the same etiquette but charge
// elapsed work time against the interval, and remain safe to share if page
// fetches are ever parallelized.
package pacer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Config holds the pacing intervals. A zero or negative interval disables
// pacing for that concern.
type Config struct {
	CategoryInterval time.Duration
	DocumentInterval time.Duration
}

// Pacer spaces category enumeration and document processing.
type Pacer struct {
	categories *rate.Limiter
	documents  *rate.Limiter
}

// New creates a Pacer from cfg.
func New(cfg Config) *Pacer {
	return &Pacer{
		categories: newLimiter(cfg.CategoryInterval),
		documents:  newLimiter(cfg.DocumentInterval),
	}
}

func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// WaitCategory blocks until the next category may be enumerated, respecting
// the context.
func (p *Pacer) WaitCategory(ctx context.Context) error {
	if err := p.categories.Wait(ctx); err != nil {
		return fmt.Errorf("category pacing wait: %w", err)
	}
	return nil
}

// WaitDocument blocks until the next page may be processed, respecting the
// context.
func (p *Pacer) WaitDocument(ctx context.Context) error {
	if err := p.documents.Wait(ctx); err != nil {
		return fmt.Errorf("document pacing wait: %w", err)
	}
	return nil
}
