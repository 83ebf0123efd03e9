package handlers

import (
	"io"
	"net/http"
	"strconv"

	"portfolio-server/db"
	"portfolio-server/host"
	"portfolio-server/telemetry"
	"portfolio-server/types"

	"go.uber.org/zap"
)

func StatusHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for StatusHandler")
	report := deps.Uptime.Status(r.Context(), db.Ping)
	report.Host = host.Ip
	writeJson(w, http.StatusOK, report)
}

func UptimeBadgeHandler(w http.ResponseWriter, r *http.Request) {
	report := deps.Uptime.Status(r.Context(), db.Ping)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache, max-age=0")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(deps.Uptime.UptimeBadge(report)); err != nil {
		zap.L().Warn("error writing badge", zap.Error(err))
	}
}

type VitalRequest struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Path  string  `json:"path"`
}

func ReportVitalHandler(w http.ResponseWriter, r *http.Request) {
	var req VitalRequest
	if !readJson(w, r, &req) {
		return
	}

	sample, err := deps.Vitals.Add(req.Name, req.Value, truncate(req.Path, 300))
	if err != nil {
		writeValidationError(w, map[string]string{"name": err.Error()})
		return
	}

	writeJson(w, http.StatusAccepted, sample)
}

type VitalsResponse struct {
	Summary map[string]telemetry.MetricSummary `json:"summary"`
	Recent  []telemetry.VitalSample            `json:"recent"`
}

func GetVitalsHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for GetVitalsHandler")

	n := 20
	if v, err := strconv.Atoi(r.URL.Query().Get("recent")); err == nil && v >= 0 {
		n = min(v, 200)
	}

	writeJson(w, http.StatusOK, VitalsResponse{Summary: deps.Vitals.Summary(), Recent: deps.Vitals.Recent(n)})
}

// CSPReportHandler takes browser violation reports. Browsers ignore the response, so
// anything parseable is a 204.
func CSPReportHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	if err != nil {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeValidation, Status: http.StatusBadRequest, Msg: "Error reading report"})
		return
	}

	reports, err := telemetry.ParseCSPReports(body)
	if err != nil {
		zap.L().Debug("rejected csp report", zap.Error(err))
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeValidation, Status: http.StatusBadRequest, Msg: "Invalid csp report"})
		return
	}

	ua := truncate(r.UserAgent(), 300)
	for i := range reports {
		if reports[i].UserAgent == "" {
			reports[i].UserAgent = ua
		}
	}
	deps.CSP.Add(reports...)

	zap.L().Debug("csp violation", zap.String("directive", reports[0].ViolatedDirective), zap.String("blocked", reports[0].BlockedUri))

	w.WriteHeader(http.StatusNoContent)
}
