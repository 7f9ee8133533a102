// If you are AI: This file runs one transcode pipeline for the lifetime of a publish.

package transcode

import (
	"context"
	"log/slog"
)

// Task owns one ffmpeg process for one publishing session.
type Task struct {
	sessionID string
	pipeline  *Pipeline
	runner    Runner
	binary    string
	log       *slog.Logger
	cancel    context.CancelFunc
	done      chan struct{}
	err       error
}

// newTask creates a task that is not yet running.
func newTask(sessionID string, p *Pipeline, runner Runner, binary string, log *slog.Logger) *Task {
	return &Task{
		sessionID: sessionID,
		pipeline:  p,
		runner:    runner,
		binary:    binary,
		log:       log,
		done:      make(chan struct{}),
	}
}

// Start prepares the output directory and launches the runner.
func (t *Task) Start(ctx context.Context) error {
	if err := t.pipeline.Prepare(); err != nil {
		close(t.done)
		return err
	}
	ctx, t.cancel = context.WithCancel(ctx)

	go func() {
		defer close(t.done)
		t.err = t.runner.Run(ctx, t.binary, t.pipeline.Command.Args())
		if t.err != nil {
			t.log.Warn("transcode exited", "session", t.sessionID, "error", t.err)
		}
		if err := t.pipeline.Cleanup(); err != nil {
			t.log.Warn("transcode cleanup failed", "dir", t.pipeline.Dir, "error", err)
		}
	}()
	return nil
}

// Stop cancels the runner and waits for cleanup.
func (t *Task) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	<-t.done
}

// Done is closed once the runner has exited and outputs are removed.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the runner error after Done is closed.
func (t *Task) Err() error {
	<-t.done
	return t.err
}
