package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/flightdeck/pkg/agent"
	"github.com/matzehuels/flightdeck/pkg/errors"
	"github.com/matzehuels/flightdeck/pkg/panel"
	"github.com/matzehuels/flightdeck/pkg/panel/layout"
)

// maxBodySize caps request bodies; panel states are small.
const maxBodySize = 1 << 20

// === wire types ===

type adjustRequest struct {
	Command   string      `json:"command"`
	CurrentUI panel.State `json:"current_ui"`
}

type adjustResponse struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	NewState *panel.State `json:"newState,omitempty"`
}

type zoneBounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type layoutRequest struct {
	State     panel.State `json:"state"`
	Primary   zoneBounds  `json:"primary"`
	Secondary zoneBounds  `json:"secondary"`
}

type layoutResponse struct {
	Primary   []layout.Entry `json:"primary"`
	Secondary []layout.Entry `json:"secondary"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{
		Success: false,
		Message: errors.UserMessage(err),
		Code:    string(errors.GetCode(err)),
	})
}

// statusFor maps an error code to an HTTP status. Upstream model
// failures surface as 502 so the frontend can distinguish them from
// bad input.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidCommand, errors.ErrCodeInvalidState,
		errors.ErrCodeInvalidComponent, errors.ErrCodeInvalidScale,
		errors.ErrCodeInvalidBounds, errors.ErrCodeProtectedComponent:
		return http.StatusBadRequest
	case errors.ErrCodeAgentUnavailable, errors.ErrCodeAgentResponse,
		errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return http.StatusBadGateway
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// handleHealth reports service and model status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	configured := false
	status := "not configured"
	if info, ok := s.adjuster.(ModelInfo); ok {
		configured = info.Configured()
		if configured {
			status = "remote model (" + info.Model() + ")"
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"model_configured": configured,
		"model_type":       "remote",
		"model_status":     status,
	})
}

// handleAdjustUI relays a pilot command to the agent and returns the
// merged state. A rejected command is a 200 with success false; only
// transport and input failures use error statuses.
func (s *Server) handleAdjustUI(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := errors.ValidateCommand(req.Command); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	current := req.CurrentUI.Normalize()
	if err := current.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.adjuster.Adjust(r.Context(), req.Command, current)
	if err != nil {
		s.log.Error("agent call failed", "error", err, "request_id", requestIDFromContext(r.Context()))
		s.writeError(w, statusFor(err), err)
		return
	}

	newState, verdict := agent.Apply(current, res)
	if !verdict.Success {
		message := verdict.Message
		if message == "" {
			message = "Command rejected."
		}
		s.writeJSON(w, http.StatusOK, adjustResponse{Success: false, Message: message})
		return
	}

	message := verdict.Message
	if message == "" {
		message = "Configuration updated."
	}
	s.writeJSON(w, http.StatusOK, adjustResponse{Success: true, Message: message, NewState: &newState})
}

// handleLayout computes placements for both zones. The secondary zone
// aligns its columns to the primary grid.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	state := req.State.Normalize()
	if err := state.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	primary := s.engine.Compute(
		state.LayoutItems(panel.ZonePrimary),
		s.engine.BoundsFor(req.Primary.Width, req.Primary.Height),
		layout.StrategyGrid,
		nil,
	)
	secondary := s.engine.Compute(
		state.LayoutItems(panel.ZoneSecondary),
		s.engine.BoundsFor(req.Secondary.Width, req.Secondary.Height),
		layout.StrategyGrid,
		primary,
	)
	s.writeJSON(w, http.StatusOK, layoutResponse{Primary: primary, Secondary: secondary})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidState, err, "decode request body")
	}
	return nil
}
