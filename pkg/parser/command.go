package parser

import (
	"fmt"
	"regexp"
	"strings"

	"sol-swap/pkg/types"
)

// Token identifiers are either symbols ("SOL", "USDC") or base58 mint
// addresses, so the command is matched case-insensitively without folding
// the identifiers themselves.
var commandPattern = regexp.MustCompile(`(?i)^(?:swap\s+)?(\d+\.?\d*)\s+(\S+)\s+to\s+(\S+)$`)

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 1 SOL to USDC"
//   - "1.5 SOL to JUP"
//   - "100 EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v to SOL"
func ParseSwapCommand(command string) (*types.SwapCommand, error) {
	command = strings.TrimSpace(command)

	matches := commandPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: 'swap <amount> <token> to <token>' (e.g., 'swap 1 SOL to USDC')")
	}

	return &types.SwapCommand{
		Amount:    matches[1],
		FromIdent: matches[2],
		ToIdent:   matches[3],
	}, nil
}

// ValidateSwapCommand validates that a parsed command has all required fields
func ValidateSwapCommand(cmd *types.SwapCommand) error {
	if cmd.Amount == "" || cmd.Amount == "0" {
		return fmt.Errorf("amount is required and must be positive")
	}
	if cmd.FromIdent == "" {
		return fmt.Errorf("source token is required")
	}
	if cmd.ToIdent == "" {
		return fmt.Errorf("destination token is required")
	}
	if strings.EqualFold(cmd.FromIdent, cmd.ToIdent) {
		return fmt.Errorf("source and destination tokens must differ")
	}
	return nil
}
