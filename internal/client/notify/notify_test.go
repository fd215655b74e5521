package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestConsole_PrefixesLines(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, logging.Discard())
	ctx := context.Background()

	c.Success(ctx, "User deleted")
	c.Info(ctx, "Searching...")
	c.Error(ctx, "Server unavailable")

	assert.Equal(t, "[ok] User deleted\n[i] Searching...\n[!] Server unavailable\n", out.String())
}

func TestConsole_LogsErrorsAsWarnings(t *testing.T) {
	var out, logs bytes.Buffer
	c := NewConsole(&out, logging.New(&logs, "info", "text"))

	c.Info(context.Background(), "quiet")
	c.Error(context.Background(), "loud")

	assert.NotContains(t, logs.String(), "quiet")
	assert.Contains(t, logs.String(), "loud")
	assert.Contains(t, logs.String(), "component=notify")
}

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()
	r.Error(ctx, "a")
	r.Success(ctx, "b")
	r.Error(ctx, "c")

	assert.Equal(t, []string{"a", "c"}, r.Texts(LevelError))
	assert.Len(t, r.Messages(), 3)

	r.Reset()
	assert.Empty(t, r.Messages())
}
