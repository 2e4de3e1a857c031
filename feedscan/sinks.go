package feedscan

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hazyhaar/feedscan/feedscan/event"
	"github.com/hazyhaar/feedscan/feedscan/internal/sink"
)

// Sink is the output interface for session events.
type Sink = sink.Sink

// NewStdoutSink creates a stdout JSON-lines sink.
func NewStdoutSink(w io.Writer) Sink {
	return sink.NewStdout(w)
}

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, logger *slog.Logger) Sink {
	return sink.NewWebhook(url, sink.WithWebhookLogger(logger))
}

// NewCallbackSink creates an in-process sink.
func NewCallbackSink(fn func(ctx context.Context, ev event.Event) error) Sink {
	return sink.NewCallback(fn)
}

// NewJournalSink opens the SQLite event journal at path.
func NewJournalSink(path string) (Sink, error) {
	return sink.OpenJournal(path)
}

// SinksFromConfig builds the sinks listed in cfg. Unknown types are logged
// and skipped; no sink at all means stdout.
func SinksFromConfig(cfgs []SinkConfig, logger *slog.Logger) ([]Sink, error) {
	sinks, err := buildSinks(cfgs, logger)
	if err != nil {
		return nil, err
	}
	if len(sinks) == 0 {
		sinks = append(sinks, NewStdoutSink(nil))
	}
	return sinks, nil
}

// StdioSinks builds the sinks listed in cfg for a process whose stdout
// carries a protocol stream: stdout sinks are skipped and there is no
// stdout fallback, so the result may be empty.
func StdioSinks(cfgs []SinkConfig, logger *slog.Logger) ([]Sink, error) {
	var kept []SinkConfig
	for _, sc := range cfgs {
		if sc.Type == "stdout" {
			logger.Warn("feedscan: stdout sink disabled, stdout is in use")
			continue
		}
		kept = append(kept, sc)
	}
	return buildSinks(kept, logger)
}

func buildSinks(cfgs []SinkConfig, logger *slog.Logger) ([]Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var sinks []Sink
	for _, sc := range cfgs {
		switch sc.Type {
		case "stdout":
			sinks = append(sinks, NewStdoutSink(nil))
		case "webhook":
			sinks = append(sinks, NewWebhookSink(sc.URL, logger))
		case "sqlite":
			j, err := NewJournalSink(sc.Path)
			if err != nil {
				for _, s := range sinks {
					s.Close()
				}
				return nil, fmt.Errorf("feedscan: sink %s: %w", sc.Path, err)
			}
			sinks = append(sinks, j)
		default:
			logger.Warn("feedscan: unknown sink type", "type", sc.Type)
		}
	}
	return sinks, nil
}
