package delivery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clipferry/clipferry/internal/status"
)

// StreamDeliverer pipes the live source stream straight into the
// transport's upload without touching disk. Exactly one attempt is
// made; any failure is returned for the orchestrator to fall back on
// and is never surfaced to the user from here.
type StreamDeliverer struct {
	Sender VideoSender
	Log    *zap.Logger
}

func (d *StreamDeliverer) Deliver(ctx context.Context, req Request, media Media, rep *status.Reporter) Outcome {
	rep.Update("sending video…")

	stream, size, err := media.OpenStream(ctx, FlavorMuxed)
	if err != nil {
		return Failed(&TransferError{URL: req.URL, Err: fmt.Errorf("open stream: %w", err)})
	}
	defer stream.Close()

	d.Log.Info("streaming video",
		zap.String("video", media.SourceID()),
		zap.Int64("size_hint_mb", size>>20),
	)

	err = d.Sender.SendVideoStream(req.ChatID, media.SourceID()+".mp4", stream, VideoOptions{
		Caption:           Caption(media, 0),
		DurationSeconds:   media.DurationSeconds(),
		SupportsStreaming: true,
	})
	if err != nil {
		return Failed(&TransportError{Op: "sendVideo stream", Err: err})
	}

	return Outcome{Method: MethodStreamed}
}
