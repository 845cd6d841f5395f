package auth

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedFetcher(token string, ttl time.Duration, err error) Fetcher {
	return func(ctx context.Context) (string, time.Duration, error) {
		return token, ttl, err
	}
}

func TestManager_Token(t *testing.T) {
	t.Run("antes do Start devolve ErrNotStarted", func(t *testing.T) {
		mgr := NewManager(fixedFetcher("x", time.Hour, nil), zerolog.Nop())
		_, err := mgr.Token()
		assert.ErrorIs(t, err, ErrNotStarted)
	})

	t.Run("Start popula o token de forma síncrona", func(t *testing.T) {
		var calls int32
		mgr := NewManager(func(ctx context.Context) (string, time.Duration, error) {
			atomic.AddInt32(&calls, 1)
			return "token-1", time.Hour, nil
		}, zerolog.Nop())
		defer mgr.Stop()

		require.NoError(t, mgr.Start(context.Background()))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

		token, err := mgr.Token()
		require.NoError(t, err)
		assert.Equal(t, "token-1", token)
	})

	t.Run("erro no fetch inicial é propagado", func(t *testing.T) {
		mgr := NewManager(fixedFetcher("", 0, errors.New("boom")), zerolog.Nop())
		err := mgr.Start(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestManager_Refresh(t *testing.T) {
	var calls int32
	mgr := NewManager(func(ctx context.Context) (string, time.Duration, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return "old", 10 * time.Millisecond, nil
		}
		return "new", time.Hour, nil
	}, zerolog.Nop())
	defer mgr.Stop()

	require.NoError(t, mgr.Start(context.Background()))

	assert.Eventually(t, func() bool {
		token, _ := mgr.Token()
		return token == "new"
	}, time.Second, 5*time.Millisecond)
}

func TestManager_StopTwice(t *testing.T) {
	mgr := NewManager(Static("abc"), zerolog.Nop())
	require.NoError(t, mgr.Start(context.Background()))
	assert.NotPanics(t, func() {
		mgr.Stop()
		mgr.Stop()
	})
}

func TestFromConfig(t *testing.T) {
	assert.Nil(t, FromConfig(Config{}, nil, zerolog.Nop()))
	assert.False(t, Config{}.Enabled())

	mgr := FromConfig(Config{Token: "static-token"}, nil, zerolog.Nop())
	require.NotNil(t, mgr)
	require.NoError(t, mgr.Start(context.Background()))

	token, err := mgr.Token()
	require.NoError(t, err)
	assert.Equal(t, "static-token", token)
}

func TestStatic_Empty(t *testing.T) {
	_, _, err := Static("")(context.Background())
	assert.Error(t, err)
}

func TestRenewAfter(t *testing.T) {
	assert.Equal(t, 5*time.Minute, renewAfter(0))
	assert.Equal(t, 80*time.Second, renewAfter(100*time.Second))
}
