package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	slogseq "github.com/sokkalf/slog-seq"
)

// multiHandler forwards log records to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	// Enable if any handler is enabled for this level
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// Options configure SetupLogger
type Options struct {
	// SeqURL enables the Seq sink when set, e.g. http://localhost:5341
	SeqURL string
	Level  slog.Level
	// Output receives console logs; defaults to stderr
	Output io.Writer
}

// SetupLogger builds the logger, installs it as the slog default and returns
// a cleanup function that flushes the Seq sink.
func SetupLogger(opts Options) (*slog.Logger, func()) {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	// Console handler
	consoleHandler := slog.NewTextHandler(opts.Output, &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.Level <= slog.LevelDebug,
	})

	// Seq is optional
	if opts.SeqURL == "" {
		logger := slog.New(consoleHandler)
		slog.SetDefault(logger)
		return logger, func() {}
	}

	// Seq handler
	_, seqHandler := slogseq.NewLogger(
		opts.SeqURL,
		slogseq.WithBatchSize(1),
		slogseq.WithFlushInterval(500*time.Millisecond),
		slogseq.WithHandlerOptions(&slog.HandlerOptions{
			Level:     opts.Level,
			AddSource: true,
		}),
	)

	// If Seq is not available, use console only
	if seqHandler == nil {
		logger := slog.New(consoleHandler)
		slog.SetDefault(logger)
		return logger, func() {}
	}

	// Combine both handlers
	multi := &multiHandler{
		handlers: []slog.Handler{consoleHandler, seqHandler},
	}

	logger := slog.New(multi)
	slog.SetDefault(logger)

	closeFn := func() {
		seqHandler.Close()
	}

	return logger, closeFn
}
