// Package checkers adapts store clients to health.Checker.
package checkers

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultTimeout bounds a single ping.
const DefaultTimeout = time.Second

// PingChecker reports a store healthy when its ping succeeds in time.
type PingChecker struct {
	name    string
	timeout time.Duration
	ping    func(ctx context.Context) error
}

func NewPingChecker(name string, timeout time.Duration, ping func(ctx context.Context) error) *PingChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &PingChecker{name: name, timeout: timeout, ping: ping}
}

func NewPostgresChecker(pool *pgxpool.Pool) *PingChecker {
	return NewPingChecker("postgres", DefaultTimeout, pool.Ping)
}

func NewMongoChecker(client *mongo.Client) *PingChecker {
	return NewPingChecker("mongo", DefaultTimeout, func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.ping(ctx)
}
