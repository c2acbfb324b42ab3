package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stridewear/stride/internal/domain"
)

type mockGuestStore struct {
	deleteExpiredFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockGuestStore) CreateGuestSession(ctx context.Context, token uuid.UUID, expiresAt time.Time) (*domain.GuestSession, error) {
	return nil, errors.New("not implemented in mock")
}

func (m *mockGuestStore) GetGuestSessionByToken(ctx context.Context, token uuid.UUID) (*domain.GuestSession, error) {
	return nil, errors.New("not implemented in mock")
}

func (m *mockGuestStore) DeleteGuestSession(ctx context.Context, id uuid.UUID) error {
	return errors.New("not implemented in mock")
}

func (m *mockGuestStore) DeleteExpiredGuestSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx, cutoff)
	}
	return 0, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweeper_RunSweepsImmediatelyAndOnTick(t *testing.T) {
	var calls atomic.Int32
	store := &mockGuestStore{
		deleteExpiredFunc: func(ctx context.Context, cutoff time.Time) (int64, error) {
			calls.Add(1)
			return 3, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	sweeper := NewSweeper(store, 10*time.Millisecond, testLogger())
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 sweeps, got %d", calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}

func TestSweeper_KeepsRunningAfterError(t *testing.T) {
	var calls atomic.Int32
	store := &mockGuestStore{
		deleteExpiredFunc: func(ctx context.Context, cutoff time.Time) (int64, error) {
			if calls.Add(1) == 1 {
				return 0, errors.New("database down")
			}
			return 0, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go NewSweeper(store, 10*time.Millisecond, testLogger()).Run(ctx)

	deadline := time.After(2 * time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected sweeper to survive an error, got %d calls", calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewSweeper_DefaultsInterval(t *testing.T) {
	s := NewSweeper(&mockGuestStore{}, 0, testLogger())
	if s.interval != DefaultSweepInterval {
		t.Errorf("expected default interval %v, got %v", DefaultSweepInterval, s.interval)
	}
}
