package process

// Notes:
// - Here KillProcessGroup only sees PIDs that cannot exist. Real
//   termination is covered by kill_unix_test.go and the browser lifecycle
//   integration tests.
// - PID 0 would target the current process group; the guard makes it a no-op.

import (
	"os"
	"testing"
)

// ---------------------------------------------------------------------------
// TestKillProcessGroup - Invalid PID Handling
// ---------------------------------------------------------------------------

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	KillProcessGroup(999999999)
}

func TestKillProcessGroup_NonPositivePID(t *testing.T) {
	t.Parallel()

	KillProcessGroup(0)
	KillProcessGroup(-1)

	if !Alive(os.Getpid()) {
		t.Fatal("current process should survive KillProcessGroup(0)")
	}
}

// ---------------------------------------------------------------------------
// TestAlive
// ---------------------------------------------------------------------------

func TestAlive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pid  int
		want bool
	}{
		{name: "current process", pid: os.Getpid(), want: true},
		{name: "zero", pid: 0, want: false},
		{name: "negative", pid: -5, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Alive(tt.pid); got != tt.want {
				t.Errorf("Alive(%d) = %v, want %v", tt.pid, got, tt.want)
			}
		})
	}
}
