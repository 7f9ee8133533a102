// If you are AI: This file starts and stops transcode tasks from publish lifecycle events.

package transcode

import (
	"context"
	"log/slog"
	"sync"

	"relaycast/internal/config"
	"relaycast/internal/core/bus"
)

// Manager keeps one Task per publishing session id.
type Manager struct {
	cfg      config.TranscodeConfig
	rtmpPort int
	binary   string
	events   *bus.Events
	runner   Runner
	log      *slog.Logger

	mu    sync.Mutex
	tasks map[string]*Task
	wg    sync.WaitGroup
}

// NewManager creates a manager reading events. binary is the resolved ffmpeg path.
func NewManager(cfg config.TranscodeConfig, rtmpPort int, binary string, events *bus.Events, runner Runner, log *slog.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		rtmpPort: rtmpPort,
		binary:   binary,
		events:   events,
		runner:   runner,
		log:      log.With("component", "transcode"),
		tasks:    make(map[string]*Task),
	}
}

// Run consumes events until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.events.C():
			switch ev.Kind {
			case bus.EventPublished:
				m.onPublished(ctx, ev)
			case bus.EventUnpublished:
				m.onUnpublished(ev)
			}
		}
	}
}

// onPublished starts a task for the session unless one is already running.
func (m *Manager) onPublished(ctx context.Context, ev bus.Event) {
	m.mu.Lock()
	if _, running := m.tasks[ev.SessionID]; running {
		m.mu.Unlock()
		return
	}
	task := newTask(ev.SessionID, NewPipeline(m.cfg, m.rtmpPort, ev.Key), m.runner, m.binary, m.log)
	m.tasks[ev.SessionID] = task
	m.mu.Unlock()

	if err := task.Start(ctx); err != nil {
		m.log.Error("transcode start failed", "session", ev.SessionID, "path", ev.Key.String(), "error", err)
		m.remove(ev.SessionID, task)
		return
	}
	m.log.Info("transcode started", "session", ev.SessionID, "path", ev.Key.String())

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		<-task.Done()
		m.remove(ev.SessionID, task)
	}()
}

// onUnpublished stops the session's task without holding up the event loop,
// since ffmpeg may take its whole grace period to exit.
func (m *Manager) onUnpublished(ev bus.Event) {
	m.mu.Lock()
	task, ok := m.tasks[ev.SessionID]
	m.mu.Unlock()
	if !ok {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		task.Stop()
		m.log.Info("transcode stopped", "session", ev.SessionID, "path", ev.Key.String())
	}()
}

// remove drops id from the task table if it still maps to task.
func (m *Manager) remove(id string, task *Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tasks[id] == task {
		delete(m.tasks, id)
	}
}

// Stop releases blocked publishers and stops every running task.
// Call it after Run has returned.
func (m *Manager) Stop() error {
	m.events.Stop()

	m.mu.Lock()
	tasks := make([]*Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, t)
	}
	m.mu.Unlock()

	for _, t := range tasks {
		t.Stop()
	}
	m.wg.Wait()
	return nil
}

// TaskCount returns the number of active transcoding tasks.
func (m *Manager) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
