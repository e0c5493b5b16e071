package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{fmt.Errorf("parse: %w", ErrInvalidResponseFormat), KindInvalidResponseFormat},
		{fmt.Errorf("validate: %w", ErrSchemaValidation), KindSchemaValidation},
		{fmt.Errorf("openai: %w", ErrRateLimited), KindRateLimited},
		{fmt.Errorf("openai: %w", ErrServiceAuth), KindServiceAuth},
		{fmt.Errorf("openai: %w: %w", ErrServiceUnavailable, context.DeadlineExceeded), KindServiceUnavailable},
		{errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "%v", tt.err)
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(ErrRateLimited))
	assert.True(t, Retryable(fmt.Errorf("x: %w", ErrServiceUnavailable)))
	assert.False(t, Retryable(ErrServiceAuth))
	assert.False(t, Retryable(ErrSchemaValidation))
	assert.False(t, Retryable(nil))
}
