package security

import (
	"encoding/json"
	"net/http"
	"strconv"

	"portfolio-server/host"
	"portfolio-server/types"

	"go.uber.org/zap"
)

// Middleware refuses blocked IPs, rejects severe threats, and rate limits. The resolved
// client IP is stored on the request context for handlers.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.totalRequests.Add(1)

		ip := g.ClientIP(r)
		r = r.WithContext(host.WithClientIP(r.Context(), ip))

		if _, blocked := g.blocklist.IsBlocked(ip); blocked {
			g.blockedRequests.Add(1)
			writeError(w, &types.ApiError{
				Type:   types.ApiErrorTypeBlocked,
				Status: http.StatusForbidden,
				Msg:    "Access denied",
			})
			return
		}

		if g.allowPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		for _, threat := range g.detector.Inspect(r) {
			blocked := g.record(ip, threat.Kind)

			if threat.Kind.Severe() || blocked {
				zap.L().Warn("request rejected",
					zap.String("ip", ip),
					zap.String("threat", string(threat.Kind)),
					zap.String("source", threat.Source),
					zap.String("path", r.URL.Path),
				)
				g.blockedRequests.Add(1)
				writeError(w, &types.ApiError{
					Type:   types.ApiErrorTypeThreat,
					Status: http.StatusForbidden,
					Msg:    "Request blocked",
				})
				return
			}
		}

		ok, wait := g.limiter.Allow(ip, g.classify(r.Method, r.URL.Path))
		if !ok {
			g.rateLimited.Add(1)
			g.record(ip, ThreatRateLimited)

			secs := RetryAfterSeconds(wait)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeError(w, &types.ApiError{
				Type:              types.ApiErrorTypeRateLimited,
				Status:            http.StatusTooManyRequests,
				Msg:               "Too many requests",
				RetryAfterSeconds: secs,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, apiErr *types.ApiError) {
	bytes, err := json.Marshal(apiErr)
	if err != nil {
		http.Error(w, apiErr.Msg, apiErr.Status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	w.Write(bytes)
}
