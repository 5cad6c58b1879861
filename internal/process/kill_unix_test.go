//go:build !windows

package process

import (
	"os/exec"
	"syscall"
	"testing"
	"time"
)

func startSleep(t *testing.T, ownGroup bool) *exec.Cmd {
	t.Helper()
	bin, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep not available")
	}
	cmd := exec.Command(bin, "30")
	if ownGroup {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}
	if err := cmd.Start(); err != nil {
		t.Fatalf("starting sleep: %v", err)
	}
	t.Cleanup(func() { _ = cmd.Process.Kill() })
	return cmd
}

func TestKillProcessGroup_Terminates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ownGroup bool
	}{
		{name: "group leader", ownGroup: true},
		{name: "member of another group", ownGroup: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := startSleep(t, tt.ownGroup)
			pid := cmd.Process.Pid
			if !Alive(pid) {
				t.Fatalf("Alive(%d) = false before kill", pid)
			}

			KillProcessGroup(pid)

			done := make(chan struct{})
			go func() {
				_ = cmd.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				t.Fatal("process survived KillProcessGroup")
			}
			if Alive(pid) {
				t.Errorf("Alive(%d) = true after reaping", pid)
			}
		})
	}
}
