package redis

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
)

func newTestHook(threshold time.Duration) (redis.Hook, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: buf})
	return newCommandHook(logg, threshold), buf
}

func TestCommandHookIgnoresMisses(t *testing.T) {
	hook, buf := newTestHook(time.Second)
	process := hook.ProcessHook(func(ctx context.Context, cmd redis.Cmder) error { return redis.Nil })

	err := process(context.Background(), redis.NewStringCmd(context.Background(), "get", "k"))
	if !IsMiss(err) {
		t.Fatalf("miss must pass through unchanged, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("miss must not be logged, got %s", buf.String())
	}
}

func TestCommandHookLogsFailures(t *testing.T) {
	hook, buf := newTestHook(time.Second)
	process := hook.ProcessHook(func(ctx context.Context, cmd redis.Cmder) error { return errors.New("READONLY") })

	_ = process(context.Background(), redis.NewStatusCmd(context.Background(), "set", "k", "v"))
	out := buf.String()
	if !strings.Contains(out, "redis.command_failed") || !strings.Contains(out, `"redis_cmd":"set"`) {
		t.Fatalf("expected failure entry, got %s", out)
	}
}

func TestCommandHookLogsSlowPipelines(t *testing.T) {
	hook, buf := newTestHook(time.Millisecond)
	process := hook.ProcessPipelineHook(func(ctx context.Context, cmds []redis.Cmder) error {
		time.Sleep(5 * time.Millisecond)
		return nil
	})

	cmds := []redis.Cmder{redis.NewStatusCmd(context.Background(), "ping"), redis.NewStatusCmd(context.Background(), "ping")}
	_ = process(context.Background(), cmds)
	out := buf.String()
	if !strings.Contains(out, "redis.command_slow") || !strings.Contains(out, `"redis_cmds":2`) {
		t.Fatalf("expected slow pipeline entry, got %s", out)
	}
}
