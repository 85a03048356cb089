package instance_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/torosent/lockbench/internal/instance"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockbench.lock")

	g, err := instance.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if g.Path() != path {
		t.Errorf("Path() = %q, want %q", g.Path(), path)
	}
	if err := g.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := g.Release(); err != nil {
		t.Fatalf("second Release() error = %v", err)
	}

	again, err := instance.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	_ = again.Release()
}

func TestAcquireWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockbench.lock")

	g, err := instance.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer g.Release()

	_, err = instance.Acquire(path)
	if !errors.Is(err, instance.ErrAlreadyRunning) {
		t.Fatalf("second Acquire() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestAcquireEmptyPath(t *testing.T) {
	if _, err := instance.Acquire(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestNilGuard(t *testing.T) {
	var g *instance.Guard
	if err := g.Release(); err != nil {
		t.Fatalf("nil Release() error = %v", err)
	}
	if g.Path() != "" {
		t.Fatalf("nil Path() = %q", g.Path())
	}
}
