package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestFileWatcher(t *testing.T) {
	t.Run("triggers reload on write", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "ceres.yaml")
		if err := os.WriteFile(path, []byte("gateway: {}\n"), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		fw, err := NewFileWatcher(path, nil)
		if err != nil {
			t.Fatalf("NewFileWatcher failed: %v", err)
		}

		var reloads atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = fw.Watch(ctx, func() error {
				reloads.Add(1)
				return nil
			})
		}()

		// Give the watcher time to register before writing.
		time.Sleep(50 * time.Millisecond)

		if err := os.WriteFile(path, []byte("gateway: {listen_address: \"127.0.0.1:9000\"}\n"), 0o644); err != nil {
			t.Fatalf("failed to rewrite config: %v", err)
		}

		deadline := time.After(2 * time.Second)
		for reloads.Load() == 0 {
			select {
			case <-deadline:
				t.Fatal("reload callback never fired")
			case <-time.After(10 * time.Millisecond):
			}
		}

		cancel()
		<-done
	})

	t.Run("ignores writes to other files", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "ceres.yaml")
		if err := os.WriteFile(path, []byte("gateway: {}\n"), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		fw, err := NewFileWatcher(path, nil)
		if err != nil {
			t.Fatalf("NewFileWatcher failed: %v", err)
		}

		var reloads atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = fw.Watch(ctx, func() error {
				reloads.Add(1)
				return nil
			})
		}()

		time.Sleep(50 * time.Millisecond)

		other := filepath.Join(dir, "other.yaml")
		if err := os.WriteFile(other, []byte("x: 1\n"), 0o644); err != nil {
			t.Fatalf("failed to write other file: %v", err)
		}

		time.Sleep(300 * time.Millisecond)
		if n := reloads.Load(); n != 0 {
			t.Errorf("expected no reloads, got %d", n)
		}

		cancel()
		<-done
	})

	t.Run("stop is idempotent when not running", func(t *testing.T) {
		fw, err := NewFileWatcher(filepath.Join(t.TempDir(), "ceres.yaml"), nil)
		if err != nil {
			t.Fatalf("NewFileWatcher failed: %v", err)
		}
		if err := fw.Stop(); err != nil {
			t.Errorf("Stop on idle watcher failed: %v", err)
		}
	})
}

func TestDebouncer(t *testing.T) {
	t.Run("collapses rapid triggers", func(t *testing.T) {
		d := NewDebouncer(50 * time.Millisecond)
		defer d.Stop()

		var calls atomic.Int32
		for i := 0; i < 10; i++ {
			d.Trigger(func() { calls.Add(1) })
			time.Sleep(5 * time.Millisecond)
		}

		time.Sleep(200 * time.Millisecond)
		if n := calls.Load(); n != 1 {
			t.Errorf("expected 1 call after burst, got %d", n)
		}
	})

	t.Run("stop cancels pending callback", func(t *testing.T) {
		d := NewDebouncer(100 * time.Millisecond)

		var calls atomic.Int32
		d.Trigger(func() { calls.Add(1) })
		d.Stop()

		time.Sleep(250 * time.Millisecond)
		if n := calls.Load(); n != 0 {
			t.Errorf("expected no calls after Stop, got %d", n)
		}
	})
}
