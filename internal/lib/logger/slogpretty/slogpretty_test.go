package slogpretty

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleTimestampLayout(t *testing.T) {
	out := new(bytes.Buffer)
	h := PrettyHandlerOptions{}.NewPrettyHandler(out)

	at := time.Date(2024, 1, 2, 10, 30, 45, 123000000, time.Local)
	r := slog.NewRecord(at, slog.LevelInfo, "started", 0)

	require.NoError(t, h.Handle(context.Background(), r))
	assert.Contains(t, out.String(), "[10:30:45.123]")
}
