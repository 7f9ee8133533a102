// If you are AI: This file runs the ffmpeg child process and forwards its stderr to the logger.

package transcode

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// stopGrace is how long ffmpeg gets to finish its playlists after an interrupt.
const stopGrace = 5 * time.Second

// Runner starts one external process and waits for it to exit.
// Cancelling ctx must stop the process; Run then returns nil.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) error
}

// FFmpegRunner runs ffmpeg with os/exec.
type FFmpegRunner struct {
	Logger *slog.Logger
}

// Run starts binary and blocks until it exits or ctx is cancelled.
func (r FFmpegRunner) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = stopGrace

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		if r.Logger != nil {
			r.Logger.Debug("ffmpeg", "line", scanner.Text())
		}
	}

	err = cmd.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
