package http

import (
	"context"
	"net/http"
	"strings"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Statuses   *StatusHandler
	Profiles   *ProfileHandler
	Health     HealthChecker
	Metrics    http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	health := newResponder(nil)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		if cfg.Health != nil {
			if err := cfg.Health.Ping(r.Context()); err != nil {
				health.loggerFor(r.Context()).ErrorContext(r.Context(), "health check failed", "error", err)
				health.writeError(r.Context(), w, http.StatusServiceUnavailable, errStorageDegraded)
				return
			}
		}
		health.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	if cfg.Statuses != nil {
		mux.HandleFunc("/statuses", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Statuses.Evaluate(w, r)
		})
	}

	if cfg.Profiles != nil {
		mux.HandleFunc("/houses", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Profiles.List(w, r)
		})
	}

	mux.HandleFunc("/houses/", func(w http.ResponseWriter, r *http.Request) {
		houseID, resource, ok := splitHousePath(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		r = r.WithContext(ContextWithHouseID(r.Context(), houseID))

		switch resource {
		case "profile":
			if cfg.Profiles == nil {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodPut:
				cfg.Profiles.Put(w, r)
			case http.MethodGet:
				cfg.Profiles.Get(w, r)
			case http.MethodDelete:
				cfg.Profiles.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodGet, http.MethodDelete)
			}
		case "status", "supplies":
			if cfg.Statuses == nil {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			if resource == "status" {
				cfg.Statuses.ForHouse(w, r)
				return
			}
			cfg.Statuses.Supplies(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

// splitHousePath splits /houses/{id}/{resource}.
func splitHousePath(path string) (string, string, bool) {
	rest := strings.TrimPrefix(path, "/houses/")
	houseID, resource, ok := strings.Cut(rest, "/")
	if !ok || strings.TrimSpace(houseID) == "" || resource == "" || strings.Contains(resource, "/") {
		return "", "", false
	}
	return houseID, resource, true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
