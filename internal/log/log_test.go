package log

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2026, 1, 2, 10, 45, 0, 0, time.UTC)

	line := Format(ts, LevelWarn, CatConstraint, "no constraint document", "dfId", "DF_1")
	require.Equal(t, "2026-01-02T10:45:00 [WARN] [constraint] no constraint document dfId=DF_1\n", line)
}

func TestFormat_OddFields(t *testing.T) {
	ts := time.Date(2026, 1, 2, 10, 45, 0, 0, time.UTC)

	line := Format(ts, LevelInfo, CatNav, "refresh", "count", 3, "orphan")
	require.Equal(t, "2026-01-02T10:45:00 [INFO] [nav] refresh count=3 orphan=<missing>\n", line)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" warn ":  LevelWarn,
		"error":   LevelError,
		"bogus":   LevelDebug,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			require.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestWriter_MinLevelAndPublish(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	SetMinLevel(LevelWarn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := defaultLogger.broker.Subscribe(ctx)

	Debug(CatCache, "hidden")
	ErrorErr(CatRegistry, "fetch failed", errors.New("boom"), "url", "http://x")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "[ERROR] [registry] fetch failed url=http://x error=boom")

	select {
	case ev := <-sub:
		require.Equal(t, LevelError, ev.Payload.Level)
		require.Equal(t, CatRegistry, ev.Payload.Category)
	case <-time.After(time.Second):
		t.Fatal("expected published entry")
	}

	SetEnabled(false)
	Error(CatUI, "muted")
	require.NotContains(t, buf.String(), "muted")
}
