package delivery

import (
	"context"

	"go.uber.org/zap"

	"github.com/clipferry/clipferry/internal/metrics"
	"github.com/clipferry/clipferry/internal/status"
)

// Pipeline routes a request through the strategy selector and the
// bounded fallback: at most one stream attempt, then at most one
// download attempt. A failed download is terminal; there is no way back
// to streaming.
type Pipeline struct {
	Stream           Deliverer
	Download         Deliverer
	StreamMaxSeconds int
	Log              *zap.Logger
}

func (p *Pipeline) Run(ctx context.Context, req Request, media Media, rep *status.Reporter) Outcome {
	if SelectStrategy(media.DurationSeconds(), p.StreamMaxSeconds) == StrategyStream {
		out := p.Stream.Deliver(ctx, req, media, rep)
		if out.Err == nil {
			return out
		}
		p.Log.Warn("stream delivery failed, falling back to download",
			zap.String("video", media.SourceID()),
			zap.Error(out.Err),
		)
		metrics.Fallbacks.Inc()
	}
	return p.Download.Deliver(ctx, req, media, rep)
}
