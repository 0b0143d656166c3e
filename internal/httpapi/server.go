// Package httpapi serves a read-mostly HTTP view of the viewer session:
// health, status, catalog, scene, a selection endpoint, an NDJSON status
// stream and Prometheus metrics.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelview/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	Models() []types.ModelSummary
	Scene() types.SceneResponse
	Ready() bool
	Select(req types.SelectRequest) (types.SelectResponse, error)
	Watch() (<-chan types.StatusResponse, func())
}

func NewMux(svc Service) http.Handler {
	o := currentOptions()
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(accessLog)
	if o.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: o.CORS.AllowedOrigins,
			AllowedMethods: o.CORS.AllowedMethods,
			AllowedHeaders: o.CORS.AllowedHeaders,
			MaxAge:         300,
		}))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(inflight)
		r.Use(middleware.Compress(5))

		r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, types.ModelsResponse{Models: svc.Models()})
		})
		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, svc.Status())
		})
		r.Get("/scene", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, svc.Scene())
		})
		r.Post("/select", func(w http.ResponseWriter, r *http.Request) {
			handleSelect(svc, o.MaxBodyBytes, w, r)
		})
	})

	r.With(inflight).Get("/events", func(w http.ResponseWriter, r *http.Request) {
		streamEvents(svc, w, r)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("disconnected"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}

func handleSelect(svc Service, maxBody int64, w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	var req types.SelectRequest
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	resp, err := svc.Select(req)
	if err != nil {
		code := statusFor(err)
		selectRequests.WithLabelValues(requestedKind(req), selectResult(code)).Inc()
		writeJSONError(w, code, err.Error())
		return
	}
	selectRequests.WithLabelValues(requestedKind(req), selectResult(http.StatusAccepted)).Inc()
	writeJSON(w, http.StatusAccepted, resp)
}

// streamEvents writes one StatusResponse per line until the client leaves,
// the server shuts down, or the service closes the stream.
func streamEvents(svc Service, w http.ResponseWriter, r *http.Request) {
	ch, stop := svc.Watch()
	defer stop()
	eventStreams.Inc()
	defer eventStreams.Dec()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flush := func() {}
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}
	flush()

	ctx, cancel := streamContext(r)
	defer cancel()
	enc := json.NewEncoder(w)
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-ch:
			if !ok {
				return
			}
			if err := enc.Encode(st); err != nil {
				return
			}
			flush()
		}
	}
}
