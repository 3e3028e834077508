//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIsSQLiteConflictError(t *testing.T) {
	if IsSQLiteConflictError(nil) {
		t.Error("nil must not be a conflict")
	}
	if !IsSQLiteConflictError(errors.New("exec: SQLITE_BUSY (5)")) {
		t.Error("expected SQLITE_BUSY to be a conflict")
	}
	if !IsSQLiteConflictError(errors.New("database is locked")) {
		t.Error("expected locked database to be a conflict")
	}
	if IsSQLiteConflictError(errors.New("no such table: users")) {
		t.Error("schema errors are not conflicts")
	}
}

func TestRetryOnConflict(t *testing.T) {
	attempts := 0
	err := RetryOnConflict(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryOnConflictStopsOnOtherErrors(t *testing.T) {
	attempts := 0
	want := errors.New("constraint failed")
	err := RetryOnConflict(context.Background(), 5, time.Millisecond, func() error {
		attempts++
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt, got %d", attempts)
	}
}
