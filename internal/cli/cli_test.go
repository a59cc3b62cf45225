package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quad400/kaydee-boutique/config"
	"github.com/quad400/kaydee-boutique/internal/domain"
	"github.com/quad400/kaydee-boutique/internal/repository/memory"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "kaydee", cmd.Use)

	for _, name := range []string{"serve", "migrate"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	flag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestRootCommand_RejectsBadLogLevel(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--log-level", "loud", "migrate"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "bad", nil))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestOpenStorage_Memory(t *testing.T) {
	store, err := openStorage(context.Background(), &config.Config{StorageDriver: config.DriverMemory}, quietLogger())
	require.NoError(t, err)
	defer store.close()
	assert.NoError(t, store.migrate(context.Background()))

	_, err = openStorage(context.Background(), &config.Config{StorageDriver: "redis"}, quietLogger())
	assert.Error(t, err)
}

func TestOpenStorage_MemorySeedsAdminSession(t *testing.T) {
	ctx := context.Background()
	token := uuid.NewString()
	store, err := openStorage(ctx, &config.Config{StorageDriver: config.DriverMemory, AdminToken: token}, quietLogger())
	require.NoError(t, err)
	defer store.close()

	principal, err := store.sessions.ResolveSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, principal.Role)

	_, err = store.sessions.ResolveSession(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

type panickingSessions struct{}

func (panickingSessions) ResolveSession(context.Context, string) (*domain.Principal, error) {
	panic("session store corrupted")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig() *config.Config {
	return &config.Config{
		StorageDriver:   config.DriverMemory,
		ShutdownTimeout: 2 * time.Second,
		RequestTimeout:  time.Second,
	}
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return lis
}

func memoryStorage(sessions domain.SessionRepository) *storage {
	s := memory.NewStore()
	if sessions == nil {
		sessions = s
	}
	return &storage{
		products:   s,
		categories: s,
		carts:      s,
		sessions:   sessions,
		migrate:    func(context.Context) error { return nil },
		close:      func() {},
	}
}

func waitForHealth(t *testing.T, addr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
}

func TestRunServer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	httpLis, grpcLis := listen(t), listen(t)

	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, testConfig(), memoryStorage(nil), quietLogger(), httpLis, grpcLis)
	}()
	waitForHealth(t, httpLis.Addr().String())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunServer_FaultExitsWithFailure(t *testing.T) {
	httpLis, grpcLis := listen(t), listen(t)

	done := make(chan error, 1)
	go func() {
		done <- runServer(context.Background(), testConfig(), memoryStorage(panickingSessions{}), quietLogger(), httpLis, grpcLis)
	}()
	addr := httpLis.Addr().String()
	waitForHealth(t, addr)

	req, err := http.NewRequest(http.MethodGet, "http://"+addr+"/api/cart", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+uuid.NewString())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, err.Error(), "session store corrupted")
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after fault")
	}
}
