package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sol-swap/pkg/types"
)

func TestParseSwapCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    *types.SwapCommand
		wantErr bool
	}{
		{
			name:    "with swap prefix",
			command: "swap 1 SOL to USDC",
			want:    &types.SwapCommand{Amount: "1", FromIdent: "SOL", ToIdent: "USDC"},
		},
		{
			name:    "without prefix",
			command: "1.5 SOL to JUP",
			want:    &types.SwapCommand{Amount: "1.5", FromIdent: "SOL", ToIdent: "JUP"},
		},
		{
			name:    "mint address preserves case",
			command: "swap 100 EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v to SOL",
			want:    &types.SwapCommand{Amount: "100", FromIdent: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", ToIdent: "SOL"},
		},
		{
			name:    "lowercase to keyword",
			command: "SWAP 2 sol TO usdc",
			want:    &types.SwapCommand{Amount: "2", FromIdent: "sol", ToIdent: "usdc"},
		},
		{
			name:    "missing destination",
			command: "swap 1 SOL",
			wantErr: true,
		},
		{
			name:    "no amount",
			command: "swap SOL to USDC",
			wantErr: true,
		},
		{
			name:    "empty",
			command: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSwapCommand(tt.command)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValidateSwapCommand(t *testing.T) {
	require.NoError(t, ValidateSwapCommand(&types.SwapCommand{Amount: "1", FromIdent: "SOL", ToIdent: "USDC"}))

	require.Error(t, ValidateSwapCommand(&types.SwapCommand{Amount: "0", FromIdent: "SOL", ToIdent: "USDC"}))
	require.Error(t, ValidateSwapCommand(&types.SwapCommand{Amount: "1", FromIdent: "", ToIdent: "USDC"}))
	require.Error(t, ValidateSwapCommand(&types.SwapCommand{Amount: "1", FromIdent: "SOL", ToIdent: ""}))
	require.Error(t, ValidateSwapCommand(&types.SwapCommand{Amount: "1", FromIdent: "SOL", ToIdent: "sol"}),
		"identical source and destination must be rejected")
}
