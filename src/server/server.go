package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"riskfortress/src/conviction"
	"riskfortress/src/gate"
	"riskfortress/src/journal"
	"riskfortress/src/model"
)

// Deps carries everything the dashboard endpoints read from.
type Deps struct {
	Gate        *gate.Gate
	Convictions *conviction.Manager
	Journal     *journal.Journal
	Snapshots   gate.SnapshotSource
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// NewRouter builds the dashboard routes.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck error")
		}
	})

	r.Get("/api/risk/health", func(w http.ResponseWriter, r *http.Request) {
		snap, err := deps.Snapshots.Snapshot(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		report, err := deps.Gate.Health(r.Context(), snap)
		if err != nil {
			logger.WithError(err).Warn("health computed with state problems")
		}
		writeJSON(w, http.StatusOK, report)
	})

	r.Get("/api/gate/status", func(w http.ResponseWriter, r *http.Request) {
		snap, err := deps.Snapshots.Snapshot(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		status, err := deps.Gate.Status(r.Context(), snap, time.Now().UTC())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	})

	r.Get("/api/convictions", func(w http.ResponseWriter, r *http.Request) {
		convictions, err := deps.Convictions.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if convictions == nil {
			convictions = []model.Conviction{}
		}
		writeJSON(w, http.StatusOK, convictions)
	})

	r.Get("/api/journal/performance", func(w http.ResponseWriter, r *http.Request) {
		days, _ := strconv.Atoi(r.URL.Query().Get("days"))
		perf, err := deps.Journal.Performance(r.Context(), days)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, perf)
	})

	r.Post("/api/evaluate", func(w http.ResponseWriter, r *http.Request) {
		var candidate model.TradeCandidate
		if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		snap, err := deps.Snapshots.Snapshot(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		decision := deps.Gate.Evaluate(r.Context(), candidate, snap, time.Now().UTC())
		writeJSON(w, http.StatusOK, decision)
	})

	return r
}

// StartServer runs the dashboard until SIGINT or SIGTERM.
func StartServer(port string, deps Deps) {
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(deps),
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
