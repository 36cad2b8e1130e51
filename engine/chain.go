package engine

import (
	"context"
	"log"
)

// StrategyChain tries an ordered list of metadata runners until one
// succeeds. Earlier failures are logged but never surfaced; the last
// failure is the one returned, with gating classified for the caller.
type StrategyChain struct {
	runners []MetadataRunner
}

// NewStrategyChain builds a chain from the given runners, tried in order.
func NewStrategyChain(runners ...MetadataRunner) *StrategyChain {
	return &StrategyChain{runners: runners}
}

// Extract resolves the info dump for url, falling through the chain.
func (c *StrategyChain) Extract(ctx context.Context, url string, opts LookupOptions) (map[string]any, error) {
	var lastErr error
	for i, r := range c.runners {
		info, err := r.Extract(ctx, url, opts)
		if err == nil {
			return info, nil
		}
		lastErr = err
		if i < len(c.runners)-1 {
			log.Printf("engine: %s strategy failed for %s, falling back: %v", r.Name(), url, err)
		}
	}
	if lastErr == nil {
		lastErr = &emptyChainError{}
	}
	return nil, classifyError(lastErr, opts.CookieFile != "" || opts.CookiesFromBrowser != "")
}

type emptyChainError struct{}

func (*emptyChainError) Error() string { return "no extraction strategy configured" }
