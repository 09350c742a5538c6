package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func init() {
	log.Logger = log.Level(zerolog.FatalLevel)
}

var errTransient = errors.New("transient")

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()
	calls := 0
	p := Policy{Attempts: 3, Delay: time.Millisecond}

	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsBudget(t *testing.T) {
	t.Parallel()
	calls := 0
	retried := 0
	p := Policy{
		Attempts: 3,
		Delay:    time.Millisecond,
		OnRetry:  func(int, error) { retried++ },
	}

	err := p.Do(context.Background(), func() error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retried)
}

func TestDoStopsOnPermanent(t *testing.T) {
	t.Parallel()
	calls := 0
	p := Policy{Attempts: 3, Delay: time.Millisecond}

	err := p.Do(context.Background(), func() error {
		calls++
		return Permanent(errTransient)
	})

	assert.Equal(t, errTransient, err)
	assert.Equal(t, 1, calls)
}

func TestDoWithResult(t *testing.T) {
	t.Parallel()
	calls := 0
	p := Policy{Attempts: 3, Delay: time.Millisecond}

	v, err := DoWithResult(context.Background(), p, func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errTransient
		}
		return 42, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestDoCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := Policy{Attempts: 3, Delay: time.Hour}

	err := p.Do(ctx, func() error { return errTransient })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestJitter(t *testing.T) {
	t.Parallel()
	const d = 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		j := Jitter(d)
		assert.GreaterOrEqual(t, j, d/2)
		assert.Less(t, j, d+d/2)
	}
	assert.Equal(t, time.Duration(0), Jitter(0))
}
