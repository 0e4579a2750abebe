package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/responses"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/config"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db"
	pkgerrors "github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/errors"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/redis"
)

const (
	readyTimeout = 2 * time.Second
	envHeader    = "X-POS-Env"
)

type dependencyCheck struct {
	name string
	ping func(context.Context) error
}

type checkResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, redis. Every
// dependency is checked even when an earlier one fails.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	checks := []dependencyCheck{{name: "database", ping: dbP.Ping}}
	if redisP != nil {
		checks = append(checks, dependencyCheck{name: "redis", ping: redisP.Ping})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		results, firstErr := runChecks(ctx, checks)
		if firstErr != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, firstErr, "dependency unavailable").WithDetails(results))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": results})
	}
}

func runChecks(ctx context.Context, checks []dependencyCheck) (map[string]checkResult, error) {
	var (
		mu       sync.Mutex
		results  = make(map[string]checkResult, len(checks))
		firstErr error
		g        errgroup.Group
	)
	for _, check := range checks {
		check := check
		g.Go(func() error {
			start := time.Now()
			err := check.ping(ctx)
			res := checkResult{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				res.Status = "unavailable"
				res.Error = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			results[check.name] = res
			if err != nil && firstErr == nil {
				firstErr = err
			}
			return nil
		})
	}
	_ = g.Wait()
	return results, firstErr
}
