package transport

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// ExecDialer spawns command and speaks native-messaging framing over its
// stdio, the same way a browser launches a native host.
func ExecDialer(command string, args ...string) Dialer {
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		cmd := exec.Command(command, args...)
		cmd.Stderr = os.Stderr

		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("bridge stdin pipe: %w", err)
		}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("bridge stdout pipe: %w", err)
		}

		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("start bridge %q: %w", command, err)
		}
		return &procConn{cmd: cmd, stdin: stdin, stdout: stdout}, nil
	}
}

// procConn adapts a child process's stdio to io.ReadWriteCloser. Closing
// stdin signals the bridge to exit; a process that ignores the EOF gets
// killed after a grace period.
type procConn struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func (p *procConn) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p *procConn) Write(b []byte) (int, error) { return p.stdin.Write(b) }

func (p *procConn) Close() error {
	_ = p.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		_ = p.cmd.Process.Kill()
		return <-done
	}
}
