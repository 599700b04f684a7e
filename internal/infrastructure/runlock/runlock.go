// Package runlock makes sure only one process drives the target at a time.
package runlock

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"automarket/internal/domain"
	"automarket/pkg/contextx"
	"automarket/pkg/errcodes"
	"automarket/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// releaseScript deletes the key only if it still belongs to the caller.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// extendScript pushes the expiry forward only if the key still belongs to
// the caller.
const extendScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`

var ErrNotHeld = errors.New("run lock is not held by this owner")

// Client is the part of the redis client the lock needs.
type Client interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

type Lock struct {
	client Client
	key    string
	ttl    time.Duration
}

func New(client Client, key string, ttl time.Duration) *Lock {
	return &Lock{client: client, key: key, ttl: ttl}
}

// Acquire takes the lock for owner. It fails with RunInProgress when another
// owner holds it.
func (l *Lock) Acquire(ctx context.Context, owner string) error {
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl).Result()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to acquire run lock")
	}

	if !ok {
		return domain.NewError(errcodes.RunInProgress, "another worker is running a sell run")
	}

	logger(ctx).Debug("run lock acquired", slog.String("key", l.key), slog.String(logx.FieldRunID, owner))

	return nil
}

func (l *Lock) Release(ctx context.Context, owner string) error {
	deleted, err := l.client.Eval(ctx, releaseScript, []string{l.key}, owner).Int64()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to release run lock")
	}

	if deleted == 0 {
		return ErrNotHeld
	}

	logger(ctx).Debug("run lock released", slog.String("key", l.key), slog.String(logx.FieldRunID, owner))

	return nil
}

// Extend resets the expiry of a held lock to the full TTL. It fails with
// ErrNotHeld when the key expired or was taken over by another owner.
func (l *Lock) Extend(ctx context.Context, owner string) error {
	extended, err := l.client.Eval(ctx, extendScript, []string{l.key}, owner, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to extend run lock")
	}

	if extended == 0 {
		return ErrNotHeld
	}

	return nil
}

func (l *Lock) TTL() time.Duration {
	return l.ttl
}
