package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug lines to a
// logger. The CLI registers it under --verbose.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("obs")}
}

// Register installs h for every hook category.
func (h *LogHooks) Register() {
	SetChartHooks(h)
	SetCatalogHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnResolve(_ context.Context, unit string, count, marks int) {
	h.logger.Debug("resolved scale", "unit", unit, "entities", count, "marks", marks)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "formats", formats, "duration", d, "err", err)
		return
	}
	h.logger.Debug("render done", "formats", formats, "duration", d)
}

func (h *LogHooks) OnFetch(_ context.Context, backend string, count int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("catalog fetch failed", "backend", backend, "duration", d, "err", err)
		return
	}
	h.logger.Debug("catalog fetch", "backend", backend, "characters", count, "duration", d)
}

func (h *LogHooks) OnMemoHit(_ context.Context, backend string) {
	h.logger.Debug("catalog memo hit", "backend", backend)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ ChartHooks   = (*LogHooks)(nil)
	_ CatalogHooks = (*LogHooks)(nil)
	_ CacheHooks   = (*LogHooks)(nil)
	_ HTTPHooks    = (*LogHooks)(nil)
)
