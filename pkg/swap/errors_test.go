package swap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifySigningError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		rejection bool
	}{
		{"user rejected", errors.New("User rejected the request"), true},
		{"user denied", errors.New("user denied transaction signature"), true},
		{"cancelled", errors.New("signing cancelled by user"), true},
		{"canceled us spelling", errors.New("request canceled by user"), true},
		{"wrapped rejection", fmt.Errorf("wallet error: %w", errors.New("user rejected signing")), true},
		{"generic failure", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifySigningError(tt.err)
			if tt.err == nil {
				require.NoError(t, got)
				return
			}

			var rejection *UserRejectionError
			if tt.rejection {
				require.True(t, errors.As(got, &rejection), "expected rejection classification for %v", tt.err)
				require.ErrorIs(t, got, tt.err)
			} else {
				require.False(t, errors.As(got, &rejection))
				require.Equal(t, tt.err, got)
			}
		})
	}
}

func TestAggregatorErrorUnwrap(t *testing.T) {
	inner := errors.New("status 502")
	err := &AggregatorError{Op: "quote", Err: inner}
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "quote")
}
