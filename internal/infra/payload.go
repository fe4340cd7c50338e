package infra

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/eliteGoblin/evilyn/internal/domain"
)

// LoggingPayload stands in for an OS binding: it logs the requested action and succeeds.
type LoggingPayload struct {
	logger *zap.Logger
}

// NewLoggingPayload creates a payload that only logs.
func NewLoggingPayload(logger *zap.Logger) *LoggingPayload {
	return &LoggingPayload{logger: logger}
}

// Perform logs the request.
func (p *LoggingPayload) Perform(ctx context.Context, req domain.ActionRequest) (domain.ActionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ActionResult{}, err
	}

	keys := make([]string, 0, len(req.Params))
	for k := range req.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p.logger.Info("payload requested",
		zap.String("module", req.Module),
		zap.String("home", req.Home),
		zap.Uint8("annoyance_level", req.Level),
		zap.Strings("params", keys))
	return domain.ActionResult{}, nil
}

// AssetGuard makes sure local assets exist before delegating to the next payload.
// The pattern comes from the domain.ParamAssetPattern request parameter; no pattern means no check.
type AssetGuard struct {
	fs   domain.FileSystemManager
	next domain.Payload
}

// NewAssetGuard wraps next with an asset presence check.
func NewAssetGuard(fs domain.FileSystemManager, next domain.Payload) *AssetGuard {
	return &AssetGuard{fs: fs, next: next}
}

// Perform fails with domain.ErrAssetsMissing when the module home has no matching file.
// The module home is created first so there is a place to drop assets into.
func (g *AssetGuard) Perform(ctx context.Context, req domain.ActionRequest) (domain.ActionResult, error) {
	if pattern := req.Params[domain.ParamAssetPattern]; pattern != "" {
		if err := g.fs.EnsureDir(req.Home); err != nil {
			return domain.ActionResult{}, fmt.Errorf("failed to create asset directory: %w", err)
		}
		found, err := g.fs.HasMatch(req.Home, pattern)
		if err != nil {
			return domain.ActionResult{}, fmt.Errorf("failed to scan assets: %w", err)
		}
		if !found {
			return domain.ActionResult{}, fmt.Errorf("%s/%s: %w", req.Home, pattern, domain.ErrAssetsMissing)
		}
	}
	return g.next.Perform(ctx, req)
}

// Ensure payloads implement domain.Payload.
var _ domain.Payload = (*LoggingPayload)(nil)
var _ domain.Payload = (*AssetGuard)(nil)
