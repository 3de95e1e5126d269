package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/openvarco/varco/internal/varco/service"
	"github.com/openvarco/varco/internal/varco/store"
	"github.com/openvarco/varco/internal/varco/types"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
		return
	}

	writeJSON(w, http.StatusOK, types.LoginResponse{Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(bearerToken(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateCode(w http.ResponseWriter, r *http.Request) {
	var req types.CreateCodeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rec, err := s.access.CreateCode(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadDateFormat):
			writeError(w, http.StatusBadRequest, "invalid_date_format", err.Error())
		case errors.Is(err, service.ErrDateRange):
			writeError(w, http.StatusBadRequest, "date_range_invalid", err.Error())
		case errors.Is(err, service.ErrMissingFields), errors.Is(err, service.ErrFieldTooLong):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		case errors.Is(err, store.ErrDuplicateIntent):
			writeError(w, http.StatusConflict, "duplicate", "a code already exists for that holder and date range")
		case errors.Is(err, service.ErrCapacityExhausted):
			writeError(w, http.StatusServiceUnavailable, "capacity_exhausted", "no free codes available")
		default:
			s.logger.Printf("create code error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, types.CreateCodeResponse{
		Code:    rec.Code,
		Name:    rec.Name,
		Surname: rec.Surname,
		DateIn:  rec.DateIn,
		DateOut: rec.DateOut,
	})
}

func (s *Server) handleListCodes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	recs, err := s.access.List(ctx)
	if err != nil {
		s.logger.Printf("list codes error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	resp := types.ListCodesResponse{Codes: make([]types.CodeListEntry, 0, len(recs))}
	for _, rz := range recs {
		resp.Codes = append(resp.Codes, types.CodeListEntry{
			Code:    rz.Record.Code,
			Name:    rz.Record.Name,
			Surname: rz.Record.Surname,
			DateIn:  rz.Record.DateIn,
			DateOut: rz.Record.DateOut,
			Zones:   rz.Zones,
		})
	}
	resp.Count = len(resp.Codes)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleToggleZone(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code, zone := vars["code"], vars["zone"]

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	active, err := s.access.ToggleZoneActive(ctx, code, zone)
	if err != nil {
		s.writeZoneMutationError(w, err, "toggle zone")
		return
	}

	writeJSON(w, http.StatusOK, types.ZoneStateResponse{Code: code, Zone: zone, Active: active})
}

func (s *Server) handleSetZone(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	code, zone := vars["code"], vars["zone"]

	var req types.SetZoneRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.access.SetZoneActive(ctx, code, zone, req.Active); err != nil {
		s.writeZoneMutationError(w, err, "set zone")
		return
	}

	writeJSON(w, http.StatusOK, types.ZoneStateResponse{Code: code, Zone: zone, Active: req.Active})
}

func (s *Server) writeZoneMutationError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrUnknownZone):
		writeError(w, http.StatusBadRequest, "invalid_zone", err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "no such code or zone entry")
	default:
		s.logger.Printf("%s error: %v", op, err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}

func (s *Server) handleDeleteCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.access.Delete(ctx, code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "no such code")
			return
		}
		s.logger.Printf("delete code error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "deleted": code})
}

func (s *Server) handleListScanners(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	scanners, err := s.scanners.Status(ctx)
	if err != nil {
		s.logger.Printf("list scanners error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, types.ScannerListResponse{Scanners: scanners})
}
