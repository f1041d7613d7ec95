package ai

import (
	"context"
	"time"
)

var _ Generator = Bounded{}

// Bounded gives every call of the wrapped Generator its own deadline.
type Bounded struct {
	Generator
	Timeout time.Duration
}

func (b Bounded) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	if b.Timeout <= 0 {
		return b.Generator.GenerateJSON(ctx, system, prompt)
	}

	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	return b.Generator.GenerateJSON(ctx, system, prompt)
}
