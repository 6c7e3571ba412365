package errors

import (
	"strings"
	"unicode"
)

// MaxCommandLength is the longest free-text command accepted from a
// pilot. Anything longer is rejected before reaching the agent.
const MaxCommandLength = 500

// ValidateCommand validates a free-text adjustment command before it is
// relayed to the agent service.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only commands
//   - No control characters or null bytes
//   - Maximum length of MaxCommandLength characters
//
// Semantic interpretation of the command is the agent's job; this only
// guards the transport.
func ValidateCommand(command string) error {
	if strings.TrimSpace(command) == "" {
		return New(ErrCodeInvalidCommand, "command cannot be empty")
	}

	if len(command) > MaxCommandLength {
		return New(ErrCodeInvalidCommand, "command too long (max %d characters)", MaxCommandLength)
	}

	for _, r := range command {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return New(ErrCodeInvalidCommand, "command contains invalid control characters")
		}
	}

	return nil
}
