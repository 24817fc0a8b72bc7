package analyzer

import (
	"context"
	"log/slog"
	"time"

	"github.com/sozercan/ollama-sentiment/internal/metrics"
)

// PullTask is a handle on a background model download.
type PullTask struct {
	Model   string
	Started time.Time

	done chan struct{}
	err  error
}

// Done is closed once the download has finished.
func (t *PullTask) Done() <-chan struct{} {
	return t.done
}

// Err returns the download result. It is only meaningful after Done is
// closed.
func (t *PullTask) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the download finishes or ctx ends.
func (t *PullTask) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// startPull starts downloading model unless a download of the same model is
// already running, in which case that task is returned.
func (a *Analyzer) startPull(model string) *PullTask {
	a.mu.Lock()
	if task, ok := a.pulls[model]; ok {
		a.mu.Unlock()
		slog.Info("Model download already in progress", "model", model, "started", task.Started)
		return task
	}
	task := &PullTask{Model: model, Started: time.Now(), done: make(chan struct{})}
	a.pulls[model] = task
	a.mu.Unlock()

	slog.Info("Trying to pull model", "model", model)
	metrics.ModelPulls.WithLabelValues(model, "started").Inc()

	go func() {
		// Detached from the request: the caller is answered before the
		// download completes.
		ctx, cancel := context.WithTimeout(context.Background(), a.opts.PullTimeout)
		defer cancel()

		task.err = a.puller.Pull(ctx, model)

		a.mu.Lock()
		delete(a.pulls, model)
		a.mu.Unlock()
		close(task.done)

		if task.err != nil {
			slog.Error("Model download failed", "model", model, "duration", time.Since(task.Started), "error", task.err)
			metrics.ModelPulls.WithLabelValues(model, "failed").Inc()
			return
		}
		slog.Info("Model download finished", "model", model, "duration", time.Since(task.Started))
		metrics.ModelPulls.WithLabelValues(model, "succeeded").Inc()
	}()

	return task
}
