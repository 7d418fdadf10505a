package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrNotRunning is returned when no live daemon owns the run file.
var ErrNotRunning = errors.New("daemon is not running")

// RuntimeInfo is written next to the pid file so status can find the API.
type RuntimeInfo struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path"`
	UserEmail string    `json:"user_email"`
}

// RunFile tracks a daemon instance on disk: the pid file itself plus a
// JSON sidecar holding RuntimeInfo.
type RunFile struct {
	Path string
}

func (r RunFile) infoPath() string { return r.Path + ".json" }

// PID reads the recorded pid. A missing file wraps os.ErrNotExist.
func (r RunFile) PID() (int, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", r.Path)
	}
	return pid, nil
}

// Live returns the pid of a running daemon, ErrNotRunning otherwise.
// A stale file left by a dead process is cleaned up.
func (r RunFile) Live() (int, error) {
	pid, err := r.PID()
	if errors.Is(err, os.ErrNotExist) {
		return 0, ErrNotRunning
	}
	if err != nil {
		return 0, err
	}
	if !Alive(pid) {
		r.Release()
		return 0, ErrNotRunning
	}
	return pid, nil
}

// Claim records info as the running daemon. It fails when another live
// process already holds the file.
func (r RunFile) Claim(info RuntimeInfo) error {
	if pid, err := r.Live(); err == nil {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	} else if !errors.Is(err, ErrNotRunning) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.Path), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.WriteFile(r.Path, []byte(strconv.Itoa(info.PID)+"\n"), 0o600); err != nil {
		return err
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	// The sidecar is advisory; status falls back to the configured address.
	_ = os.WriteFile(r.infoPath(), append(data, '\n'), 0o600)
	return nil
}

// Info reads the sidecar written by Claim.
func (r RunFile) Info() (RuntimeInfo, error) {
	var info RuntimeInfo
	data, err := os.ReadFile(r.infoPath())
	if err != nil {
		return info, err
	}
	err = json.Unmarshal(data, &info)
	return info, err
}

// Release removes the pid file and its sidecar.
func (r RunFile) Release() {
	_ = os.Remove(r.Path)
	_ = os.Remove(r.infoPath())
}

// Stop sends SIGTERM to the live daemon and waits up to timeout for it
// to exit.
func (r RunFile) Stop(timeout time.Duration) (int, error) {
	pid, err := r.Live()
	if err != nil {
		return 0, err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return pid, fmt.Errorf("signal daemon process: %w", err)
	}
	for deadline := time.Now().Add(timeout); time.Now().Before(deadline); {
		if !Alive(pid) {
			r.Release()
			return pid, nil
		}
		time.Sleep(150 * time.Millisecond)
	}
	return pid, fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}

// Alive probes pid with signal 0. EPERM still means the process exists.
func Alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
