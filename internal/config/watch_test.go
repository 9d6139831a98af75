package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: http://one:8000\n"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan *Config, 1)
	go func() {
		_ = Watch(ctx, path, func(cfg *Config) {
			select {
			case changed <- cfg:
			default:
			}
		}, nil)
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("endpoint: http://two:8000\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, "http://two:8000", cfg.Endpoint)
	case <-ctx.Done():
		t.Fatal("config reload did not fire")
	}
}

func TestWatch_InvalidReloadKeepsRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: http://one:8000\n"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan *Config, 1)
	failed := make(chan error, 1)
	go func() {
		_ = Watch(ctx, path, func(cfg *Config) {
			select {
			case changed <- cfg:
			default:
			}
		}, func(err error) {
			select {
			case failed <- err:
			default:
			}
		})
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("endpoint: [broken\n"), 0o644))

	select {
	case err := <-failed:
		assert.Error(t, err)
	case <-ctx.Done():
		t.Fatal("reload error did not surface")
	}

	// A later valid write still gets through.
	require.NoError(t, os.WriteFile(path, []byte("endpoint: http://three:8000\n"), 0o644))
	select {
	case cfg := <-changed:
		assert.Equal(t, "http://three:8000", cfg.Endpoint)
	case <-ctx.Done():
		t.Fatal("recovery reload did not fire")
	}
}

func TestWatch_CancelStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(*Config) {}, nil)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}
}
