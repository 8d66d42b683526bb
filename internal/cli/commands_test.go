package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/config"
	"github.com/terraincognita07/dailyglow/internal/models"
	"github.com/terraincognita07/dailyglow/internal/services"
)

func openTestBackend(t *testing.T) *Backend {
	t.Helper()

	backend, err := OpenBackend(context.Background(), config.Config{
		DBPath:              filepath.Join(t.TempDir(), "dailyglow-cli.db"),
		Location:            time.UTC,
		DailyChallengeLimit: 2,
	}, nil)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func TestMigrateAndSeedCommands(t *testing.T) {
	backend := openTestBackend(t)
	if backend.Kind != BackendSQLite {
		t.Fatalf("expected sqlite backend, got %s", backend.Kind)
	}

	var out bytes.Buffer
	if err := RunMigrateCommand(context.Background(), backend, &out); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out.String(), "0001") {
		t.Fatalf("expected applied migration versions, got %q", out.String())
	}

	out.Reset()
	if err := RunSeedCommand(context.Background(), backend, &out); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out.String(), "seeded 8 achievements, 8 badges, 8 challenges") {
		t.Fatalf("unexpected seed output %q", out.String())
	}

	out.Reset()
	if err := RunSeedCommand(context.Background(), backend, &out); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if !strings.Contains(out.String(), "seeded 0 achievements, 0 badges, 0 challenges") {
		t.Fatalf("expected idempotent seed, got %q", out.String())
	}

	if err := backend.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestStreakCommandPrintsSnapshot(t *testing.T) {
	backend := openTestBackend(t)
	if err := RunSeedCommand(context.Background(), backend, &bytes.Buffer{}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	userID := uuid.New()
	session := services.NewSession(userID, services.SessionDeps{Store: backend.Store, Location: time.UTC})
	period := models.PeriodEvening
	if _, err := session.CheckIn(context.Background(), &period); err != nil {
		t.Fatalf("check in: %v", err)
	}

	var out bytes.Buffer
	if err := RunStreakCommand(context.Background(), backend.Store, userID.String(), time.UTC, &out); err != nil {
		t.Fatalf("streak: %v", err)
	}
	rendered := out.String()
	for _, fragment := range []string{userID.String(), "overall:  1 days", "evening:  1 (stored 1)", "entries:  1"} {
		if !strings.Contains(rendered, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, rendered)
		}
	}
}

func TestStreakCommandRejectsBadUserID(t *testing.T) {
	backend := openTestBackend(t)

	if err := RunStreakCommand(context.Background(), backend.Store, "", time.UTC, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for empty user id")
	}
	if err := RunStreakCommand(context.Background(), backend.Store, "not-a-uuid", time.UTC, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for malformed user id")
	}
}

func TestTokenCommand(t *testing.T) {
	var out bytes.Buffer
	secret := []byte(strings.Repeat("k", 32))

	if err := RunTokenCommand(secret, uuid.NewString(), time.Hour, &out); err != nil {
		t.Fatalf("token: %v", err)
	}
	if parts := strings.Split(strings.TrimSpace(out.String()), "."); len(parts) != 3 {
		t.Fatalf("expected a JWT, got %q", out.String())
	}
	if err := RunTokenCommand(secret, uuid.NewString(), 0, &out); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
