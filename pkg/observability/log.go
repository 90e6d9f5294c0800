package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event as a debug log line. It implements
// PipelineHooks, CacheHooks and StoreHooks.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger under the "hooks" prefix.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnReadStart(_ context.Context, source string) {
	h.logger.Debug("read start", "source", source)
}

func (h *LogHooks) OnReadComplete(_ context.Context, source string, records, issues int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("read failed", "source", source, "records", records, "duration", d, "err", err)
		return
	}
	h.logger.Debug("read complete", "source", source, "records", records, "issues", issues, "duration", d)
}

func (h *LogHooks) OnNormalizeComplete(_ context.Context, source string, packages, versions int, d time.Duration) {
	h.logger.Debug("normalize complete", "source", source, "packages", packages, "versions", versions, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, source string) {
	h.logger.Debug("cache hit", "source", source)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, source string) {
	h.logger.Debug("cache miss", "source", source)
}

func (h *LogHooks) OnCacheSet(_ context.Context, source string, size int) {
	h.logger.Debug("cache set", "source", source, "bytes", size)
}

func (h *LogHooks) OnStoreWrite(_ context.Context, collection string, documents int, d time.Duration, err error) {
	h.logger.Debug("store write", "collection", collection, "documents", documents, "duration", d, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ StoreHooks    = (*LogHooks)(nil)
)
