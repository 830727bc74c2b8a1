package receiver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-tone/internal/config"
)

// TestResolveListenAddress prefers the override and otherwise binds the configured port.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("receiver.local:50051", "")
	require.NoError(t, err)
	require.Equal(t, ":50051", addr)

	addr, err = resolveListenAddress("receiver.local:50051", "127.0.0.1:6000")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:6000", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}

// TestLoadSettings applies command line overrides on top of the settings file.
func TestLoadSettings(t *testing.T) {
	t.Parallel()

	settings, err := loadSettings(&Options{})
	require.NoError(t, err)
	require.Equal(t, config.DefaultReceiver(), settings)

	path := filepath.Join(t.TempDir(), config.DefaultReceiverFilename)
	require.NoError(t, os.WriteFile(path, []byte("server_addr: 10.0.0.5:7000\nstorage_dir: /srv/tones\n"), 0o600))

	settings, err = loadSettings(&Options{ConfigPath: path, HTTPAddress: "127.0.0.1:9090"})
	require.NoError(t, err)
	require.Equal(t, &config.Receiver{
		ServerAddress: "10.0.0.5:7000",
		StorageDir:    "/srv/tones",
		HTTPAddress:   "127.0.0.1:9090",
	}, settings)

	_, err = loadSettings(&Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

// TestRun_StopsOnCancel starts the receiver on an ephemeral port and stops it.
func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	result := make(chan error, 1)

	go func() {
		result <- Run(ctx, &Options{
			ListenAddress: "127.0.0.1:0",
			StorageDir:    filepath.Join(t.TempDir(), "deliveries"),
			Ready:         ready,
		})
	}()

	select {
	case addr := <-ready:
		require.NotEmpty(t, addr)
	case err := <-result:
		require.FailNow(t, "receiver exited early", "error: %v", err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "receiver did not start")
	}

	cancel()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "receiver did not stop")
	}
}
