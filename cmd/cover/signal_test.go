package main

// Notes:
// - OS signal delivery is not exercised; raising SIGTERM inside the test
//   binary races every other parallel test. A cancelled parent stands in for
//   the signal, which is what notifyContext turns it into.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNotifyContext
// ---------------------------------------------------------------------------

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cancel   bool // cancel the parent
		stop     bool // call stop before checking
		wantDone bool
	}{
		{"live until signalled", false, false, false},
		{"stop releases", false, true, true},
		{"parent cancellation propagates", true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parent, cancel := context.WithCancel(context.Background())
			defer cancel()
			ctx, stop := notifyContext(parent)
			defer stop()

			if tt.cancel {
				cancel()
			}
			if tt.stop {
				stop()
			}

			select {
			case <-ctx.Done():
				if !tt.wantDone {
					t.Fatal("context done before any signal")
				}
			default:
				if tt.wantDone {
					t.Fatal("context still live")
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Interrupted
// ---------------------------------------------------------------------------

func TestRunMain_Interrupted(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := notifyContext(parent)
	defer stop()
	cancel()

	base := t.TempDir()
	out := filepath.Join(base, "cover.png")
	env := newTestEnv(t)

	code := runMain(ctx, []string{
		"cover", "template",
		"--title", "Weekly notes",
		"--base-dir", base,
		"-o", out,
	}, env.Environment)

	if code != ExitGeneral {
		t.Errorf("runMain() = %d, want %d", code, ExitGeneral)
	}
	if !strings.Contains(env.stderr.String(), "interrupted") {
		t.Errorf("stderr = %q, want interrupted", env.stderr.String())
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cover written after interrupt: %v", err)
	}
}
