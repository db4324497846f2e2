package instrument

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunID_RoundTrip(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, RunID(ctx))

	ctx = WithRunID(ctx, "0192f3a1")
	assert.Equal(t, "0192f3a1", RunID(ctx))
}

func TestReplaceSymbols(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"🚀 upstox token refresh started", "[START] upstox token refresh started"},
		{"✅ mongodb connected", "[OK] mongodb connected"},
		{"❌ database connection failed", "[ERROR] database connection failed"},
		{"🎉 token refresh completed", "[SUCCESS] token refresh completed"},
		{"👋 exiting", "[EXIT] exiting"},
		{"plain text stays intact", "plain text stays intact"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, replaceSymbols(tt.in))
	}
}

func TestTagWriter_ReportsOriginalLength(t *testing.T) {
	var buf bytes.Buffer
	w := &tagWriter{w: &buf}

	in := []byte("🚀 go\n")
	n, err := w.Write(in)

	assert.NoError(t, err)
	assert.Equal(t, len(in), n)
	assert.Equal(t, "[START] go\n", buf.String())
}

func TestMaskHandler_RedactsConfiguredKeys(t *testing.T) {
	var buf bytes.Buffer
	handler := &maskHandler{
		handler:  slog.NewTextHandler(&buf, nil),
		maskKeys: buildMaskKeys([]string{"password", "TOTP_SECRET"}),
	}

	logger := slog.New(handler)
	logger.Info("credentials loaded",
		"username", "9876543210",
		"password", "hunter2",
		"totp_secret", "JBSWY3DPEHPK3PXP",
	)

	out := buf.String()
	assert.Contains(t, out, "username=9876543210")
	assert.Contains(t, out, "password=***")
	assert.Contains(t, out, "totp_secret=***")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "JBSWY3DPEHPK3PXP")
}

func TestMaskHandler_RedactsGroupedKeys(t *testing.T) {
	var buf bytes.Buffer
	handler := &maskHandler{
		handler:  slog.NewTextHandler(&buf, nil),
		maskKeys: buildMaskKeys([]string{"token"}),
	}

	slog.New(handler).Info("record saved", slog.Group("record",
		slog.String("token", "eyJhbGciOi"),
		slog.String("broker", "UPSTOX"),
	))

	out := buf.String()
	assert.Contains(t, out, "record.token=***")
	assert.Contains(t, out, "record.broker=UPSTOX")
}

func TestContextHandler_StampsServiceAndRunID(t *testing.T) {
	var buf bytes.Buffer
	handler := &contextHandler{
		Handler:     slog.NewTextHandler(&buf, nil),
		serviceName: "upstox-token-refresh",
	}

	ctx := WithRunID(context.Background(), "0192f3a1")
	slog.New(handler).InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, "service=upstox-token-refresh")
	assert.Contains(t, out, "run_id=0192f3a1")
}

func TestInitLogging_WritesToFile(t *testing.T) {
	path := t.TempDir() + "/refresh.log"

	closeFn, err := InitLogging(LogConfig{
		ServiceName: "upstox-token-refresh",
		FilePath:    path,
		MaskFields:  []string{"password"},
	})
	assert.NoError(t, err)

	slog.Info("log sink check", "password", "hunter2")
	assert.NoError(t, closeFn())

	assert.FileExists(t, path)
}
