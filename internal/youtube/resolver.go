// Package youtube resolves YouTube links to playable metadata and byte
// streams through the extraction client.
package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	ytdl "github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/clipferry/clipferry/internal/delivery"
)

// InvalidURLError means the text did not look like a YouTube link; it
// is raised before any network access.
type InvalidURLError struct {
	Text string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("not a youtube link: %q", e.Text)
}

// ExtractionError means the upstream service could not resolve or
// serve the video (restricted, removed, network failure).
type ExtractionError struct {
	VideoID string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.VideoID, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// https://golang.org/s/re2syntax
var watchRe = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/shorts/|youtube\.com/live/)([0-9A-Za-z_-]+)`)

// ExtractVideoID pulls the video id out of a message. It is a purely
// local check so junk input never costs a network call.
func ExtractVideoID(text string) (string, error) {
	if mm := watchRe.FindStringSubmatch(text); len(mm) > 1 {
		return mm[1], nil
	}
	return "", &InvalidURLError{Text: text}
}

type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(req)
}

// Resolver fetches video metadata and opens media streams.
type Resolver struct {
	client     ytdl.Client
	sizeBudget int64
	log        *zap.Logger
}

// NewResolver builds a resolver whose requests carry a desktop browser
// User-Agent. sizeBudget steers the download format pick toward the
// best quality that still fits the upload ceiling.
func NewResolver(userAgent string, sizeBudget int64, log *zap.Logger) *Resolver {
	httpClient := &http.Client{
		Transport: &userAgentTransport{base: http.DefaultTransport, agent: userAgent},
	}
	return &Resolver{
		client:     ytdl.Client{HTTPClient: httpClient},
		sizeBudget: sizeBudget,
		log:        log,
	}
}

// Resolve fetches title and duration for a video id.
func (r *Resolver) Resolve(ctx context.Context, videoID string) (*Video, error) {
	info, err := r.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, &ExtractionError{VideoID: videoID, Err: err}
	}
	return &Video{id: videoID, info: info, resolver: r}, nil
}

// Video is resolved metadata plus access to the media stream. It
// implements delivery.Media.
type Video struct {
	id       string
	info     *ytdl.Video
	resolver *Resolver
}

func (v *Video) SourceID() string { return v.id }

// DisplayTitle is the title capped at 50 runes for captions and status
// text.
func (v *Video) DisplayTitle() string {
	rr := []rune(v.info.Title)
	if len(rr) > 50 {
		rr = rr[:50]
	}
	return string(rr)
}

func (v *Video) DurationSeconds() int {
	return int(v.info.Duration.Seconds())
}

// OpenStream opens the media byte stream for the given flavor.
func (v *Video) OpenStream(ctx context.Context, flavor delivery.StreamFlavor) (io.ReadCloser, int64, error) {
	format, err := v.pickFormat(flavor)
	if err != nil {
		return nil, 0, err
	}
	v.resolver.log.Info("opening stream",
		zap.String("video", v.id),
		zap.String("quality", format.QualityLabel),
		zap.String("mime", format.MimeType),
		zap.Int("bitrate_kbps", format.Bitrate>>10),
	)
	return v.resolver.client.GetStreamContext(ctx, v.info, format)
}

// pickFormat scans the muxed formats for the best bitrate whose
// estimated size fits the budget, keeping the smallest one as a fallback
// so an oversized video still yields a stream (the size gate after
// download has the final word).
func (v *Video) pickFormat(flavor delivery.StreamFlavor) (*ytdl.Format, error) {
	var best, smallest ytdl.Format
	for _, f := range v.info.Formats.WithAudioChannels() {
		if f.QualityLabel == "" || f.AudioQuality == "" {
			continue
		}
		if flavor == delivery.FlavorMuxedMP4 && !strings.HasPrefix(f.MimeType, "video/mp4") {
			continue
		}
		fsize := f.ContentLength
		if fsize == 0 {
			fsize = int64(f.Bitrate/8) * int64(v.info.Duration.Seconds())
		}
		if smallest.ItagNo == 0 || f.Bitrate < smallest.Bitrate {
			smallest = f
		}
		if fsize < v.resolver.sizeBudget && f.Bitrate > best.Bitrate {
			best = f
		}
	}
	if best.ItagNo == 0 {
		best = smallest
	}
	if best.ItagNo == 0 {
		return nil, fmt.Errorf("no format with both audio and video for youtu.be/%s", v.id)
	}
	return &best, nil
}
