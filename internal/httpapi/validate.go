package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/openvarco/varco/internal/varco/service"
	"github.com/openvarco/varco/internal/varco/types"
)

// handleValidate answers a zone scanner's "is this code usable here?" query.
// Statuses follow the scanner protocol: success/200, inactive/403,
// not_found/404, error/500. The scanner never sees storage internals.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	zone := mux.Vars(r)["zone"]

	// Scanner firmware may send extra fields (timestamps, debug info);
	// unknown keys are ignored rather than rejected.
	var req types.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, types.ValidateResponse{
			Status:  "error",
			Message: "invalid JSON body",
		})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		writeJSON(w, http.StatusBadRequest, types.ValidateResponse{
			Status:  "error",
			Message: "QR code missing",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	outcome, err := s.validation.Validate(ctx, code, zone)
	if err != nil {
		s.logger.Printf("validate error zone=%s: %v", zone, err)
		writeJSON(w, http.StatusInternalServerError, types.ValidateResponse{
			Status:  "error",
			Message: "validation backend unavailable",
		})
		return
	}

	switch outcome {
	case service.OutcomeValid:
		writeJSON(w, http.StatusOK, types.ValidateResponse{
			Status:  "success",
			Message: fmt.Sprintf("QR code %q is valid and active", code),
		})
	case service.OutcomeInactive:
		writeJSON(w, http.StatusForbidden, types.ValidateResponse{
			Status:  "inactive",
			Message: fmt.Sprintf("QR code %q exists but is inactive", code),
		})
	default:
		writeJSON(w, http.StatusNotFound, types.ValidateResponse{
			Status:  "not_found",
			Message: fmt.Sprintf("QR code %q does not exist", code),
		})
	}
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req types.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	resp, err := s.scanners.Record(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidScannerID) {
			writeError(w, http.StatusBadRequest, "invalid_scanner_id", err.Error())
			return
		}
		s.logger.Printf("heartbeat error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
