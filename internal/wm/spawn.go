package wm

import (
	"fmt"
	"os/exec"
	"syscall"
)

// execSpawn starts argv in its own session so it outlives the window
// manager's process group, and reaps it in the background.
func execSpawn(argv []string, env []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
