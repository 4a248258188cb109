package checkers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPingChecker(t *testing.T) {
	ok := NewPingChecker("memory", 0, func(context.Context) error { return nil })
	assert.Equal(t, "memory", ok.Name())
	assert.Equal(t, DefaultTimeout, ok.timeout)
	assert.NoError(t, ok.Check(context.Background()))

	down := errors.New("refused")
	assert.ErrorIs(t, NewPingChecker("db", time.Second, func(context.Context) error { return down }).Check(context.Background()), down)
}

func TestPingCheckerTimesOut(t *testing.T) {
	slow := NewPingChecker("slow", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, slow.Check(context.Background()), context.DeadlineExceeded)
}
