package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-dm/internal/config"
	applog "github.com/vovakirdan/wirechat-dm/internal/log"
	"github.com/vovakirdan/wirechat-dm/internal/store/sqlite"
)

func TestNewResetsStalePresence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dm.db")
	ctx := context.Background()

	st, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	user, err := st.CreateUser(ctx, "alice", "hash", "")
	if err != nil {
		t.Fatal(err)
	}
	seen := time.Now().UTC().Truncate(time.Second)
	if err := st.SetPresence(ctx, user.ID, true, seen); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.DatabasePath = dbPath
	a, err := New(ctx, &cfg, applog.Nop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	got, err := a.store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsOnline {
		t.Fatal("presence should be cleared at startup")
	}
	if got.LastSeen == nil {
		t.Fatal("lastSeen should be preserved")
	}
}

func TestMetricsEndpointFollowsConfig(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		cfg := config.Default()
		cfg.DatabasePath = filepath.Join(t.TempDir(), "dm.db")
		cfg.MetricsEnabled = enabled

		a, err := New(context.Background(), &cfg, applog.Nop())
		if err != nil {
			t.Fatalf("new app: %v", err)
		}

		rec := httptest.NewRecorder()
		a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		a.Close()

		if enabled && (rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "wirechat_live_connections")) {
			t.Fatalf("metrics enabled: status %d body %q", rec.Code, rec.Body.String())
		}
		if !enabled && rec.Code != http.StatusNotFound {
			t.Fatalf("metrics disabled: status %d", rec.Code)
		}
	}
}
