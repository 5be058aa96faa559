package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// rejectedCodes are the provider error codes that hold for every retry of
// the same request.
var rejectedCodes = map[llms.ErrorCode]bool{
	llms.ErrCodeAuthentication:   true,
	llms.ErrCodeInvalidRequest:   true,
	llms.ErrCodeResourceNotFound: true,
	llms.ErrCodeTokenLimit:       true,
	llms.ErrCodeContentFilter:    true,
	llms.ErrCodeQuotaExceeded:    true,
	llms.ErrCodeNotImplemented:   true,
}

// classifyError marks non-transient provider errors with ai.ErrRejected.
// Everything else, rate limits and timeouts included, comes back unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var mapped *llms.Error
	if !errors.As(openai.MapError(err), &mapped) || !rejectedCodes[mapped.Code] {
		return err
	}
	return fmt.Errorf("%w (%s): %w", ai.ErrRejected, mapped.Code, err)
}
