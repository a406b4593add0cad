package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"servegate/internal/serving"
	"servegate/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Handle(ctx context.Context, ev *serving.Event) (*serving.Event, error)
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/v2/models", func(w http.ResponseWriter, r *http.Request) {
		st := svc.Status()
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: []types.ModelSummary{{
			Name:     st.Model,
			Version:  st.Version,
			Protocol: st.Protocol,
			Ready:    st.State == string(serving.StateReady),
		}}})
	})

	r.Get("/v2/models/{model}", func(w http.ResponseWriter, r *http.Request) {
		dispatchEvent(svc, w, r, "")
	})
	r.Post("/v2/models/{model}", func(w http.ResponseWriter, r *http.Request) {
		dispatchEvent(svc, w, r, "")
	})
	r.Get("/v2/models/{model}/{operation}", func(w http.ResponseWriter, r *http.Request) {
		dispatchEvent(svc, w, r, chi.URLParam(r, "operation"))
	})
	r.Post("/v2/models/{model}/{operation}", func(w http.ResponseWriter, r *http.Request) {
		dispatchEvent(svc, w, r, chi.URLParam(r, "operation"))
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// dispatchEvent builds a serving event from the request, runs it through the
// dispatcher and writes the response.
func dispatchEvent(svc Service, w http.ResponseWriter, r *http.Request, operation string) {
	st := svc.Status()
	if model := chi.URLParam(r, "model"); model != st.Model {
		writeJSONError(w, http.StatusNotFound, "model not found: "+model)
		return
	}

	var body any
	if r.Method != http.MethodGet {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	ev := &serving.Event{
		ID:      r.Header.Get("X-Request-ID"),
		Path:    operation,
		Method:  r.Method,
		Body:    body,
		Trigger: serving.TriggerHTTP,
	}

	start := time.Now()
	lvl := requestLogLevel(r)
	if lvl >= LevelInfo {
		logEventStart(r, operation)
	}
	// Join server base context with request context so shutdown cancels work too.
	joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	out, err := svc.Handle(joinedCtx, ev)
	if err != nil {
		// If context was canceled (client disconnect), just return.
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := http.StatusInternalServerError
		if he, ok := err.(HTTPError); ok {
			status = he.StatusCode()
		}
		writeJSONError(w, status, err.Error())
		if lvl >= LevelInfo {
			logEventEnd(r, operation, status, time.Since(start), err)
		}
		return
	}

	status := http.StatusOK
	if out.Terminated && out.StatusCode != 0 {
		// Raw status response (health check), bypasses the JSON envelope.
		status = out.StatusCode
		w.WriteHeader(status)
		if s, ok := out.Body.(string); ok {
			w.Write([]byte(s))
		}
	} else {
		writeJSON(w, http.StatusOK, out.Body)
	}
	if lvl >= LevelInfo {
		logEventEnd(r, operation, status, time.Since(start), nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && zlog != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}
