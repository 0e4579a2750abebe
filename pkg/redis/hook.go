package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
)

// commandHook logs failed and slow commands. Cache misses are not failures.
type commandHook struct {
	logg          *logger.Logger
	slowThreshold time.Duration
}

func newCommandHook(logg *logger.Logger, slowThreshold time.Duration) redis.Hook {
	return commandHook{logg: logg, slowThreshold: slowThreshold}
}

func (h commandHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.logg.Warn(h.logg.WithField(ctx, "addr", addr), "redis.dial_failed")
		}
		return conn, err
	}
}

func (h commandHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(ctx, cmd.Name(), 1, time.Since(start), err)
		return err
	}
}

func (h commandHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.observe(ctx, "pipeline", len(cmds), time.Since(start), err)
		return err
	}
}

func (h commandHook) observe(ctx context.Context, name string, count int, elapsed time.Duration, err error) {
	if err != nil && errors.Is(err, redis.Nil) {
		err = nil
	}
	slow := h.slowThreshold > 0 && elapsed > h.slowThreshold
	if err == nil && !slow {
		return
	}

	ctx = h.logg.WithFields(ctx, map[string]any{
		"redis_cmd":   name,
		"redis_cmds":  count,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		h.logg.Error(ctx, "redis.command_failed", err)
		return
	}
	h.logg.Warn(ctx, "redis.command_slow")
}
