// Package agent turns natural-language cockpit commands into panel
// state updates by calling an OpenAI-compatible chat model.
//
// The model returns a structured verdict: either a rejection with an
// explanation, or a complete replacement component list. The package
// enforces the safety constraints locally as well, so a model that
// ignores its instructions can never hide a core instrument.
package agent

import (
	"context"

	"github.com/matzehuels/flightdeck/pkg/errors"
	"github.com/matzehuels/flightdeck/pkg/panel"
)

// Result is the agent's verdict on a command.
//
// A rejected command (Success false) carries an explanation in Message
// and no UpdatedConfig. An accepted command carries the complete
// modified state in UpdatedConfig.
type Result struct {
	Success       bool         `json:"success"`
	Message       string       `json:"message"`
	UpdatedConfig *panel.State `json:"updatedConfig,omitempty"`
}

// Adjuster processes a pilot command against the current panel state.
// Implementations must treat rejections as successful calls: only
// transport and decoding failures are errors.
type Adjuster interface {
	Adjust(ctx context.Context, command string, current panel.State) (Result, error)
}

// Apply validates and merges an accepted result onto the current state.
//
// The update is overlaid onto current (see panel.Merge) and the merged
// state is validated. A safety violation does not surface as an error:
// the command is converted to a rejection so the caller keeps the
// previous state, mirroring how an unsafe command is refused up front.
func Apply(current panel.State, res Result) (panel.State, Result) {
	if !res.Success || res.UpdatedConfig == nil {
		res.UpdatedConfig = nil
		return current, res
	}

	merged := panel.Merge(current, *res.UpdatedConfig)
	if err := merged.Validate(); err != nil {
		return current, Result{
			Success: false,
			Message: "Request refused: " + errors.UserMessage(err),
		}
	}
	res.UpdatedConfig = &merged
	return merged, res
}

// Reject builds a rejection result with the given explanation.
func Reject(message string) Result {
	return Result{Success: false, Message: message}
}
