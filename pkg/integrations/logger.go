package integrations

import (
	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
)

// leveledLogger adapts a charmbracelet logger to retryablehttp.LeveledLogger,
// whose methods take a string message.
type leveledLogger struct {
	l *log.Logger
}

func newLeveledLogger(l *log.Logger) retryablehttp.LeveledLogger {
	return leveledLogger{l: l.WithPrefix("http")}
}

func (a leveledLogger) Error(msg string, kv ...any) { a.l.Error(msg, kv...) }
func (a leveledLogger) Info(msg string, kv ...any)  { a.l.Info(msg, kv...) }
func (a leveledLogger) Debug(msg string, kv ...any) { a.l.Debug(msg, kv...) }
func (a leveledLogger) Warn(msg string, kv ...any)  { a.l.Warn(msg, kv...) }
