// If you are AI: This file provides helper functions for building and running the server binary in tests.

package itest

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

// Process is a running relaycast binary.
type Process struct {
	Cmd      *exec.Cmd
	HTTPPort int
	RTMPPort int
	done     chan error
}

// BuildBinary compiles cmd/relaycast into a temp directory.
func BuildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test builds the binary")
	}
	binPath := filepath.Join(t.TempDir(), "relaycast")
	buildCmd := exec.Command("go", "build", "-o", binPath, "../../cmd/relaycast")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build binary: %v\n%s", err, out)
	}
	return binPath
}

// findFreePort finds a free TCP port.
func findFreePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("Failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	return port
}

// StartServer writes a config with free ports plus extra YAML and starts the binary.
// env entries are appended to the process environment.
func StartServer(t *testing.T, binPath, extra string, env ...string) *Process {
	t.Helper()
	p := &Process{HTTPPort: findFreePort(t), RTMPPort: findFreePort(t), done: make(chan error, 1)}

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("server:\n  http_port: %d\n  rtmp_port: %d\n%s", p.HTTPPort, p.RTMPPort, extra)
	if err := os.WriteFile(configPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	p.Cmd = exec.Command(binPath, "-config", configPath)
	p.Cmd.Dir = dir
	p.Cmd.Env = append(os.Environ(), env...)
	p.Cmd.Stdout = os.Stdout
	p.Cmd.Stderr = os.Stderr
	if err := p.Cmd.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	go func() { p.done <- p.Cmd.Wait() }()

	t.Cleanup(func() {
		select {
		case <-p.done:
		default:
			p.Cmd.Process.Kill()
			<-p.done
		}
	})
	return p
}

// Stop sends SIGINT and waits up to timeout for a clean exit.
func (p *Process) Stop(timeout time.Duration) error {
	if err := p.Cmd.Process.Signal(syscall.SIGINT); err != nil {
		return err
	}
	return p.Wait(timeout)
}

// Wait waits for the process to exit by itself.
func (p *Process) Wait(timeout time.Duration) error {
	select {
	case err := <-p.done:
		p.done <- err
		return err
	case <-time.After(timeout):
		return fmt.Errorf("process still running after %v", timeout)
	}
}

// WaitForHealth waits for the health endpoint to become available.
func WaitForHealth(port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("http://localhost:%d/healthz", port)

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("health endpoint not available after %v", timeout)
}
