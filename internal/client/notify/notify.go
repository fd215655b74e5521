// Package notify delivers short, non-fatal messages to the operator.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/useradmin/internal/logging"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notifier shows transient messages. Implementations must be safe for
// concurrent use; background fetches notify from their own goroutines.
type Notifier interface {
	Success(ctx context.Context, msg string)
	Info(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

// Console prints one prefixed line per message and mirrors it to the log.
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	log logging.Logger
}

func NewConsole(w io.Writer, log logging.Logger) *Console {
	return &Console{w: w, log: log.With("component", "notify")}
}

func (c *Console) Success(ctx context.Context, msg string) { c.emit(ctx, LevelSuccess, msg) }
func (c *Console) Info(ctx context.Context, msg string)    { c.emit(ctx, LevelInfo, msg) }
func (c *Console) Error(ctx context.Context, msg string)   { c.emit(ctx, LevelError, msg) }

var prefixes = map[Level]string{
	LevelSuccess: "[ok]",
	LevelInfo:    "[i]",
	LevelError:   "[!]",
}

func (c *Console) emit(ctx context.Context, level Level, msg string) {
	c.mu.Lock()
	fmt.Fprintf(c.w, "%s %s\n", prefixes[level], msg)
	c.mu.Unlock()

	if level == LevelError {
		c.log.Warn(ctx, "notification", "level", string(level), "message", msg)
		return
	}
	c.log.Debug(ctx, "notification", "level", string(level), "message", msg)
}

type Message struct {
	Level Level
	Text  string
}

// Recorder keeps every message in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Success(_ context.Context, msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Info(_ context.Context, msg string)    { r.add(LevelInfo, msg) }
func (r *Recorder) Error(_ context.Context, msg string)   { r.add(LevelError, msg) }

func (r *Recorder) add(level Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Level: level, Text: text})
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Texts returns the texts of messages at level.
func (r *Recorder) Texts(level Level) []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Level == level {
			out = append(out, m.Text)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.messages = nil
	r.mu.Unlock()
}
