// Package delivery decides how a resolved video reaches the chat and
// carries it there: short clips are streamed straight through, longer
// ones are downloaded to a scratch file, size-checked and uploaded,
// with a single stream→download fallback hop.
package delivery

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/clipferry/clipferry/internal/status"
)

// Request is the per-message unit of work. It is created when a link
// arrives and discarded once the reply resolves.
type Request struct {
	ChatID      int64
	URL         string
	RequestedAt time.Time
}

// StreamFlavor selects which upstream format class to open.
type StreamFlavor int

const (
	// FlavorMuxed is any format carrying both audio and video.
	FlavorMuxed StreamFlavor = iota
	// FlavorMuxedMP4 additionally requires the mp4 container, the
	// format Telegram plays inline.
	FlavorMuxedMP4
)

// Media is a resolved video: display metadata plus the ability to open
// its byte stream. Implemented by internal/youtube.
type Media interface {
	SourceID() string
	DisplayTitle() string
	DurationSeconds() int
	OpenStream(ctx context.Context, flavor StreamFlavor) (io.ReadCloser, int64, error)
}

// VideoSender is the slice of the messaging transport deliveries need.
type VideoSender interface {
	SendVideoStream(chatID int64, filename string, r io.Reader, opt VideoOptions) error
	SendVideoFile(chatID int64, path string, opt VideoOptions) error
}

// VideoOptions carries the upload attributes common to both send paths.
type VideoOptions struct {
	Caption           string
	DurationSeconds   int
	SupportsStreaming bool
}

// Method tags how a video reached the chat.
type Method string

const (
	MethodStreamed   Method = "streamed"
	MethodDownloaded Method = "downloaded"
	MethodNone       Method = "none"
)

// Outcome is the terminal result of one delivery attempt. Err is nil
// exactly when Method is Streamed or Downloaded.
type Outcome struct {
	Method Method
	Err    error
}

// Failed builds a failed outcome.
func Failed(err error) Outcome {
	return Outcome{Method: MethodNone, Err: err}
}

// Deliverer attempts one delivery of media to the request's chat.
type Deliverer interface {
	Deliver(ctx context.Context, req Request, media Media, rep *status.Reporter) Outcome
}

// FormatDuration renders a duration as M:SS for captions, total minutes
// with the seconds zero-padded.
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Caption builds the upload caption: display title, short link and
// duration, plus the file size in MB (one decimal) when known.
func Caption(media Media, sizeBytes int64) string {
	c := fmt.Sprintf("%s\nyoutu.be/%s %s", media.DisplayTitle(), media.SourceID(), FormatDuration(media.DurationSeconds()))
	if sizeBytes > 0 {
		c += fmt.Sprintf(" %.1fMB", float64(sizeBytes)/(1<<20))
	}
	return c
}
