package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level log
// entries. Register it with --verbose to trace what the pipeline does.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

// RegisterLogHooks installs l as pipeline, cache and HTTP hooks.
func RegisterLogHooks(l *log.Logger) {
	h := NewLogHooks(l)
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnExtractStart(_ context.Context, name string, floor int) {
	h.logger.Debug("extract start", "map", name, "floor", floor)
}

func (h *LogHooks) OnExtractComplete(_ context.Context, name string, floor int, s ExtractStats, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("extract failed", "map", name, "floor", floor, "duration", d, "err", err)
		return
	}
	h.logger.Debug("extract done", "map", name, "floor", floor,
		"size", formatSize(s.Width, s.Height), "nodes", s.Nodes, "edges", s.Edges,
		"issues", s.Issues, "cached", s.CacheHit, "duration", d)
}

func (h *LogHooks) OnExportStart(_ context.Context, formats []string) {
	h.logger.Debug("export start", "formats", formats)
}

func (h *LogHooks) OnExportComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("export done", "formats", formats, "duration", d, "err", err)
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

func (h *LogHooks) OnCacheError(_ context.Context, keyType string, err error) {
	h.logger.Warn("cache error", "type", keyType, "err", err)
}

func (h *LogHooks) OnRequest(_ context.Context, requestID, method, path string) {
	h.logger.Debug("request", "id", requestID, "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, requestID, method, path string, status int, d time.Duration) {
	h.logger.Info("response", "id", requestID, "method", method, "path", path, "status", status, "duration", d)
}

func formatSize(w, h int) string {
	return fmt.Sprintf("%dx%d", w, h)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
