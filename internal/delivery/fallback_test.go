package delivery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clipferry/clipferry/internal/status"
)

type scriptedDeliverer struct {
	outcome Outcome
	calls   int
	lastReq Request
	lastMed Media
}

func (d *scriptedDeliverer) Deliver(_ context.Context, req Request, media Media, _ *status.Reporter) Outcome {
	d.calls++
	d.lastReq = req
	d.lastMed = media
	return d.outcome
}

func newPipeline(stream, download *scriptedDeliverer) *Pipeline {
	return &Pipeline{Stream: stream, Download: download, StreamMaxSeconds: 120, Log: zap.NewNop()}
}

func TestPipelineShortVideoStreams(t *testing.T) {
	stream := &scriptedDeliverer{outcome: Outcome{Method: MethodStreamed}}
	download := &scriptedDeliverer{outcome: Outcome{Method: MethodDownloaded}}
	p := newPipeline(stream, download)
	media := &fakeMedia{id: "a", duration: 120}

	out := p.Run(context.Background(), Request{ChatID: 1}, media, newTestReporter(&fakeMessenger{}))

	require.NoError(t, out.Err)
	assert.Equal(t, MethodStreamed, out.Method)
	assert.Equal(t, 1, stream.calls)
	assert.Equal(t, 0, download.calls, "no download after a successful stream")
}

func TestPipelineStreamFailureFallsBackOnce(t *testing.T) {
	stream := &scriptedDeliverer{outcome: Failed(errBoom)}
	download := &scriptedDeliverer{outcome: Outcome{Method: MethodDownloaded}}
	p := newPipeline(stream, download)
	media := &fakeMedia{id: "b", title: "T", duration: 90}
	req := Request{ChatID: 2, URL: "youtu.be/b"}

	out := p.Run(context.Background(), req, media, newTestReporter(&fakeMessenger{}))

	require.NoError(t, out.Err)
	assert.Equal(t, MethodDownloaded, out.Method)
	assert.Equal(t, 1, stream.calls)
	assert.Equal(t, 1, download.calls)
	assert.Equal(t, req, download.lastReq, "fallback reuses the same request")
	assert.Same(t, media, download.lastMed.(*fakeMedia), "fallback reuses the same metadata")
}

func TestPipelineLongVideoSkipsStream(t *testing.T) {
	stream := &scriptedDeliverer{outcome: Outcome{Method: MethodStreamed}}
	download := &scriptedDeliverer{outcome: Outcome{Method: MethodDownloaded}}
	p := newPipeline(stream, download)
	media := &fakeMedia{id: "c", duration: 121}

	out := p.Run(context.Background(), Request{ChatID: 3}, media, newTestReporter(&fakeMessenger{}))

	require.NoError(t, out.Err)
	assert.Equal(t, MethodDownloaded, out.Method)
	assert.Equal(t, 0, stream.calls)
	assert.Equal(t, 1, download.calls)
}

func TestPipelineDownloadFailureIsTerminal(t *testing.T) {
	stream := &scriptedDeliverer{outcome: Failed(errBoom)}
	download := &scriptedDeliverer{outcome: Failed(&TooLargeError{SizeBytes: 49 << 20, LimitBytes: 48 << 20})}
	p := newPipeline(stream, download)
	media := &fakeMedia{id: "d", duration: 60}

	out := p.Run(context.Background(), Request{ChatID: 4}, media, newTestReporter(&fakeMessenger{}))

	require.Error(t, out.Err)
	assert.Equal(t, 1, stream.calls, "stream is never retried after the fallback")
	assert.Equal(t, 1, download.calls)
}
