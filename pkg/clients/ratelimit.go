package clients

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited spaces out calls to the wrapped model.
type RateLimited struct {
	model   ChatModel
	limiter *rate.Limiter
}

// NewRateLimited allows requestsPerMinute calls per minute with a burst of
// one. A non-positive rate returns model unchanged.
func NewRateLimited(model ChatModel, requestsPerMinute int) ChatModel {
	if requestsPerMinute <= 0 {
		return model
	}
	return &RateLimited{
		model:   model,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

func (r *RateLimited) Name() string {
	return r.model.Name()
}

func (r *RateLimited) Generate(ctx context.Context, history []Turn, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return r.model.Generate(ctx, history, prompt)
}
