package app

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-hospital-client/internal/api/dto"
	devserver "github.com/spec-kit/smart-hospital-client/internal/api/http"
	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/observability"
	"github.com/spec-kit/smart-hospital-client/internal/repository"
	"github.com/spec-kit/smart-hospital-client/internal/service"
	"github.com/spec-kit/smart-hospital-client/internal/ui"
)

func startDevServer(t *testing.T) *config.Config {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	cfg := &config.Config{
		App:          config.AppConfig{Name: "smart-hospital", Version: "test"},
		API:          config.APIConfig{BaseURL: base, RequestTimeoutSeconds: 5},
		Store:        config.StoreConfig{Backend: config.StoreMemory},
		Pages:        config.PagesConfig{Source: config.PagesHTTP, BaseURL: base},
		Notification: config.NotificationConfig{TTLSeconds: 60},
		Downloads:    config.DownloadsConfig{Dir: t.TempDir()},
		DevServer:    config.DevServerConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
	}

	server := devserver.NewDevServer(cfg, nil, nil, nil)
	go func() { _ = server.Listener(ln) }()
	t.Cleanup(func() { _ = server.Shutdown() })
	return cfg
}

type client struct {
	t    *testing.T
	app  *App
	term *ui.Terminal
}

func newClient(t *testing.T, cfg *config.Config, hash domain.Hash) *client {
	t.Helper()
	term := ui.NewTerminal(&bytes.Buffer{})
	a, err := New(Dependencies{
		Config:  cfg,
		Store:   repository.NewMemoryTokenStore(),
		View:    term,
		Metrics: observability.NewMetrics(),
		Hash:    hash,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = a.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	c := &client{t: t, app: a, term: term}
	require.NoError(t, a.Start(context.Background()))
	c.idle()
	return c
}

func (c *client) idle() {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(c.t, c.app.WaitIdle(ctx))
}

func (c *client) message() string {
	if n := c.term.Snapshot().Notification; n != nil {
		return n.Message
	}
	return ""
}

func (c *client) signUpAndIn(name, email string, role domain.Role) {
	c.t.Helper()
	ctx := context.Background()
	require.NoError(c.t, c.app.Session.Register(ctx, dto.RegisterRequest{
		FullName: name, Email: email, Password: "pw", Role: string(role),
	}))
	c.idle()
	require.Equal(c.t, service.MsgRegisterSuccessful, c.message())

	require.NoError(c.t, c.app.Session.Login(ctx, email, "pw"))
	c.idle()
	require.Equal(c.t, service.MsgLoginSuccessful, c.message())
}

func TestRegisterLoginLogoutAgainstDevServer(t *testing.T) {
	cfg := startDevServer(t)
	c := newClient(t, cfg, domain.HashNone)
	ctx := context.Background()

	snap := c.term.Snapshot()
	assert.Equal(t, domain.PageLogin, snap.Page)
	assert.False(t, snap.LoggedIn)
	assert.Contains(t, snap.Body, "Sign in")

	require.NoError(t, c.app.Navigate(ctx, domain.HashRegister))
	c.idle()
	assert.Equal(t, domain.PageRegister, c.term.Snapshot().Page)

	require.NoError(t, c.app.Session.Register(ctx, dto.RegisterRequest{
		FullName: "Ana", Email: "ana@h.org", Password: "pw", Role: "cleaner",
	}))
	c.idle()
	assert.Equal(t, service.MsgRegisterSuccessful, c.message())
	assert.Equal(t, domain.HashLogin, c.app.Nav.Hash())
	assert.Equal(t, domain.PageLogin, c.term.Snapshot().Page)

	require.NoError(t, c.app.Session.Register(ctx, dto.RegisterRequest{
		FullName: "Ana", Email: "ana@h.org", Password: "pw", Role: "cleaner",
	}))
	c.idle()
	assert.Equal(t, "User with this email already exists.", c.message())

	require.NoError(t, c.app.Session.Login(ctx, "ana@h.org", "wrong"))
	c.idle()
	assert.Equal(t, "Invalid credentials", c.message())
	assert.Equal(t, domain.PageLogin, c.term.Snapshot().Page)

	require.NoError(t, c.app.Session.Login(ctx, "ana@h.org", "pw"))
	c.idle()
	snap = c.term.Snapshot()
	assert.Equal(t, domain.PageCleaner, snap.Page)
	assert.True(t, snap.LoggedIn)
	assert.False(t, snap.Failed)
	assert.Contains(t, snap.Body, "No tasks assigned.")

	claims, err := c.app.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCleaner, claims.Role)
	assert.Equal(t, "Ana", claims.FullName)

	require.NoError(t, c.app.Session.Logout(ctx))
	c.idle()
	snap = c.term.Snapshot()
	assert.Equal(t, domain.PageLogin, snap.Page)
	assert.False(t, snap.LoggedIn)
	assert.Equal(t, service.MsgLoggedOut, c.message())
}

func TestAdminAndCleanerWorkflow(t *testing.T) {
	cfg := startDevServer(t)
	ctx := context.Background()

	cleaner := newClient(t, cfg, domain.HashNone)
	cleaner.signUpAndIn("Ana", "ana@h.org", domain.RoleCleaner)
	cleanerClaims, err := cleaner.app.Current(ctx)
	require.NoError(t, err)

	dean := newClient(t, cfg, domain.HashNone)
	dean.signUpAndIn("Dee", "dee@h.org", domain.RoleDean)
	assert.Equal(t, domain.PageAdmin, dean.term.Snapshot().Page)

	require.NoError(t, dean.app.Dashboard.AssignTask(ctx, "ICU-3", cleanerClaims.UserID, "2024-05-06", "Mop twice"))
	dean.idle()
	assert.Equal(t, service.MsgTaskAssigned, dean.message())

	require.NoError(t, cleaner.app.Refresh(ctx))
	cleaner.idle()
	body := cleaner.term.Snapshot().Body
	assert.Contains(t, body, "ICU-3")
	assert.Contains(t, body, "Mop twice")

	photo := filepath.Join(t.TempDir(), "after.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg"), 0o600))
	require.NoError(t, cleaner.app.Dashboard.SubmitVerification(ctx, "ICU-3", photo))
	cleaner.idle()
	assert.Equal(t, service.MsgWorkSubmitted, cleaner.message())

	manager := newClient(t, cfg, domain.HashNone)
	manager.signUpAndIn("Mo", "mo@h.org", domain.RoleManager)
	body = manager.term.Snapshot().Body
	require.Contains(t, body, "[1] ICU-3")

	require.NoError(t, manager.app.Dashboard.Review(ctx, 1, domain.ApprovalApproved))
	manager.idle()
	assert.Equal(t, "Record approved successfully.", manager.message())
	assert.Contains(t, manager.term.Snapshot().Body, "No items pending approval.")

	require.NoError(t, dean.app.Dashboard.DownloadReport(ctx))
	dean.idle()
	assert.Equal(t, service.MsgReportDownloaded, dean.message())

	entries, err := os.ReadDir(cfg.Downloads.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "Weekly_Report_"))
	content, err := os.ReadFile(filepath.Join(cfg.Downloads.Dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "ICU-3")
}

func TestUnreachableAPIShowsNetworkError(t *testing.T) {
	cfg := &config.Config{
		API:          config.APIConfig{BaseURL: "http://127.0.0.1:1", RequestTimeoutSeconds: 2},
		Pages:        config.PagesConfig{Source: config.PagesEmbedded},
		Notification: config.NotificationConfig{TTLSeconds: 60},
	}
	c := newClient(t, cfg, domain.HashNone)

	require.NoError(t, c.app.Session.Login(context.Background(), "a@b.com", "x"))
	c.idle()

	n := c.term.Snapshot().Notification
	require.NotNil(t, n)
	assert.Equal(t, domain.NotificationError, n.Level)
	assert.Contains(t, n.Message, "network error")
	assert.Equal(t, domain.PageLogin, c.term.Snapshot().Page)
}
