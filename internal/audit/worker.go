package audit

import (
	"context"
	"log/slog"
)

// Worker drains the publisher's inbox into the configured sinks. A sink
// failure is logged and skipped; the trail never takes the service down.
type Worker struct {
	inbox  <-chan Event
	sinks  []Sink
	logger *slog.Logger
}

func NewWorker(inbox <-chan Event, logger *slog.Logger, sinks ...Sink) *Worker {
	return &Worker{inbox: inbox, sinks: sinks, logger: logger}
}

// Run consumes events until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			for _, sink := range w.sinks {
				if err := sink.Append(ctx, event); err != nil {
					w.logger.Error("audit sink append failed",
						"kind", string(event.Kind), "error", err)
				}
			}
		}
	}
}
