package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogBuffer is a logrus hook that keeps the most recent entries for the log
// pane.
type LogBuffer struct {
	mu    sync.Mutex
	lines []string
	size  int
}

func NewLogBuffer(size int) *LogBuffer {
	if size < 1 {
		size = 1
	}
	return &LogBuffer{size: size}
}

func (b *LogBuffer) Levels() []logrus.Level { return logrus.AllLevels }

func (b *LogBuffer) Fire(e *logrus.Entry) error {
	line := formatEntry(e)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if over := len(b.lines) - b.size; over > 0 {
		b.lines = append(b.lines[:0], b.lines[over:]...)
	}
	return nil
}

// Tail returns up to n of the newest lines, oldest first.
func (b *LogBuffer) Tail(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > len(b.lines) {
		n = len(b.lines)
	}
	if n <= 0 {
		return nil
	}
	return append([]string(nil), b.lines[len(b.lines)-n:]...)
}

func formatEntry(e *logrus.Entry) string {
	level := strings.ToUpper(e.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, "%s %s %s", e.Time.Format("15:04:05"), level, e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k == "session" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, e.Data[k])
	}
	return b.String()
}

// divertLogs sends the standard logger into buf instead of the terminal the
// UI is drawing on. The returned func puts the old output and hooks back.
func divertLogs(buf *LogBuffer) (restore func()) {
	std := logrus.StandardLogger()
	out := std.Out
	hooks := std.ReplaceHooks(make(logrus.LevelHooks))
	std.AddHook(buf)
	std.SetOutput(io.Discard)

	return func() {
		std.ReplaceHooks(hooks)
		std.SetOutput(out)
	}
}
