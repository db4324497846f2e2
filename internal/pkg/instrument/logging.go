package instrument

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// maxLogFileSize is the cap after which the log file is rotated by rename at
// open time, keeping a single .old generation.
const maxLogFileSize = 10 << 20 // 10 MiB

type runIDKey struct{}

// WithRunID stores the per-run correlation id in the context so the logging
// handler can stamp it on every record.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the correlation id stored in the context, or "".
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	return ""
}

// LogConfig drives logging initialization.
type LogConfig struct {
	// ServiceName is stamped on every record.
	ServiceName string
	// FilePath is the log file location; empty disables file logging.
	FilePath string
	// MaskFields lists attribute keys whose values are redacted in output.
	MaskFields []string
}

// InitLogging installs the process-wide slog default: human-readable
// timestamped lines fanned out to stdout and a log file, with secret fields
// masked and the run correlation id attached. Returns a close function for the
// file handle.
func InitLogging(cfg LogConfig) (func() error, error) {
	writers := []io.Writer{newConsoleWriter(os.Stdout)}
	closeFn := func() error { return nil }

	if cfg.FilePath != "" {
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
		closeFn = file.Close
	}

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	handlers := make([]slog.Handler, 0, len(writers))
	for _, w := range writers {
		handlers = append(handlers, slog.NewTextHandler(w, opts))
	}

	var handler slog.Handler
	if len(handlers) == 1 {
		handler = handlers[0]
	} else {
		handler = &multiHandler{handlers: handlers}
	}

	slog.SetDefault(slog.New(&contextHandler{
		Handler:     &maskHandler{handler: handler, maskKeys: buildMaskKeys(cfg.MaskFields)},
		serviceName: cfg.ServiceName,
	}))

	return closeFn, nil
}

// openLogFile opens the log file for appending, rotating the previous
// generation aside when it has grown past maxLogFileSize.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}

	if info, err := os.Stat(path); err == nil && info.Size() > maxLogFileSize {
		//nolint:errcheck // a failed rotation only means the file keeps growing
		os.Rename(path, path+".old")
	}

	// #nosec G304 -- path comes from trusted configuration.
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
}

type contextHandler struct {
	slog.Handler
	serviceName string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RunID(ctx); id != "" {
		r.AddAttrs(slog.String("run_id", id))
	}
	r.AddAttrs(slog.String("service", h.serviceName))

	return h.Handler.Handle(ctx, r)
}

type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range m.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, handler := range m.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		rec := record.Clone()
		if err := handler.Handle(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, 0, len(m.handlers))
	for _, handler := range m.handlers {
		handlers = append(handlers, handler.WithAttrs(attrs))
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, 0, len(m.handlers))
	for _, handler := range m.handlers {
		handlers = append(handlers, handler.WithGroup(name))
	}
	return &multiHandler{handlers: handlers}
}

type maskHandler struct {
	handler  slog.Handler
	maskKeys map[string]struct{}
}

func (h *maskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *maskHandler) Handle(ctx context.Context, record slog.Record) error {
	if len(h.maskKeys) == 0 {
		return h.handler.Handle(ctx, record)
	}

	masked := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		masked.AddAttrs(maskAttr(attr, h.maskKeys))
		return true
	})

	return h.handler.Handle(ctx, masked)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		masked = append(masked, maskAttr(attr, h.maskKeys))
	}

	return &maskHandler{
		handler:  h.handler.WithAttrs(masked),
		maskKeys: h.maskKeys,
	}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{
		handler:  h.handler.WithGroup(name),
		maskKeys: h.maskKeys,
	}
}

func buildMaskKeys(fields []string) map[string]struct{} {
	maskKeys := make(map[string]struct{})
	for _, field := range fields {
		field = strings.TrimSpace(strings.ToLower(field))
		if field == "" {
			continue
		}
		maskKeys[field] = struct{}{}
	}
	return maskKeys
}

func maskAttr(attr slog.Attr, maskKeys map[string]struct{}) slog.Attr {
	if _, found := maskKeys[strings.ToLower(attr.Key)]; found {
		return slog.String(attr.Key, "***")
	}

	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		masked := make([]slog.Attr, 0, len(group))
		for _, ga := range group {
			masked = append(masked, maskAttr(ga, maskKeys))
		}
		attr.Value = slog.GroupValue(masked...)
	}

	return attr
}

// symbolTags maps decorative log symbols to bracketed ASCII tags. Windows
// consoles default to legacy code pages that garble these symbols, so on that
// platform the console writer substitutes the tag instead.
var symbolTags = map[string]string{
	"🚀":  "[START]",
	"✅":  "[OK]",
	"❌":  "[ERROR]",
	"🔌":  "[DB]",
	"🔑":  "[AUTH]",
	"🔄":  "[REFRESH]",
	"💡":  "[INFO]",
	"⚠️": "[WARN]",
	"🎉":  "[SUCCESS]",
	"👋":  "[EXIT]",
	"📱":  "[ALERT]",
	"🚨":  "[CRITICAL]",
}

type tagWriter struct {
	w io.Writer
}

func (t *tagWriter) Write(p []byte) (int, error) {
	if _, err := t.w.Write([]byte(replaceSymbols(string(p)))); err != nil {
		return 0, err
	}
	// Report the original length; the replacement may change the byte count.
	return len(p), nil
}

func replaceSymbols(s string) string {
	for symbol, tag := range symbolTags {
		s = strings.ReplaceAll(s, symbol, tag)
	}
	return s
}

func newConsoleWriter(w io.Writer) io.Writer {
	if runtime.GOOS == "windows" {
		return &tagWriter{w: w}
	}
	return w
}
