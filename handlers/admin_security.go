package handlers

import (
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"portfolio-server/telemetry"
	"portfolio-server/types"

	"go.uber.org/zap"
)

func SecurityStatsHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for SecurityStatsHandler")
	if authenticateAdmin(w, r) == nil {
		return
	}
	writeJson(w, http.StatusOK, deps.Guard.Stats())
}

func BlockIpHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for BlockIpHandler")
	auth := authenticateAdmin(w, r)
	if auth == nil {
		return
	}

	var req types.BlockIpRequest
	if !readJson(w, r, &req) {
		return
	}

	v := newValidator()
	addr, err := netip.ParseAddr(strings.TrimSpace(req.Ip))
	if err != nil {
		v.add("ip", "must be a valid ip address")
	}
	var ttl time.Duration
	if req.Duration != "" {
		ttl, err = time.ParseDuration(req.Duration)
		if err != nil || ttl <= 0 {
			v.add("duration", "must be a positive duration like 24h, or empty for permanent")
		}
	}
	v.maxLen("reason", req.Reason, 200)
	if !v.ok() {
		writeValidationError(w, v.fields)
		return
	}

	// never let an admin lock themselves out
	if addr.Unmap().String() == clientIp(r) {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeValidation, Status: http.StatusBadRequest, Msg: "can't block your own ip"})
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual"
	}
	entry := deps.Guard.Block(addr.Unmap().String(), reason, ttl)

	zap.L().Info("Successfully blocked ip", zap.String("ip", entry.Ip), zap.String("userId", auth.User.Id), zap.Bool("permanent", entry.Permanent))

	writeJson(w, http.StatusOK, entry)
}

func UnblockIpHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for UnblockIpHandler")
	auth := authenticateAdmin(w, r)
	if auth == nil {
		return
	}

	var req types.UnblockIpRequest
	if !readJson(w, r, &req) {
		return
	}

	addr, err := netip.ParseAddr(strings.TrimSpace(req.Ip))
	if err != nil {
		writeValidationError(w, map[string]string{"ip": "must be a valid ip address"})
		return
	}

	if !deps.Guard.Unblock(addr.Unmap().String()) {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeNotFound, Status: http.StatusNotFound, Msg: "ip is not blocked"})
		return
	}

	zap.L().Info("Successfully unblocked ip", zap.String("ip", addr.String()), zap.String("userId", auth.User.Id))

	writeJson(w, http.StatusOK, map[string]string{"ip": addr.Unmap().String(), "status": "unblocked"})
}

type CSPReportsResponse struct {
	Summary telemetry.CSPSummary  `json:"summary"`
	Recent  []telemetry.CSPReport `json:"recent"`
}

func ListCSPReportsHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ListCSPReportsHandler")
	if authenticateAdmin(w, r) == nil {
		return
	}

	n := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v >= 0 {
		n = min(v, telemetry.DefaultCSPCapacity)
	}

	writeJson(w, http.StatusOK, CSPReportsResponse{Summary: deps.CSP.Summary(), Recent: deps.CSP.Recent(n)})
}
