package delivery

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/clipferry/clipferry/internal/status"
)

// DownloadDeliverer persists the source stream to a scratch file,
// rejects it if it exceeds the upload ceiling, uploads it as a video
// otherwise, and removes the file on every exit path.
type DownloadDeliverer struct {
	Sender         VideoSender
	ScratchDir     string
	MaxUploadBytes int64
	Log            *zap.Logger

	now func() time.Time // test hook
}

func (d *DownloadDeliverer) Deliver(ctx context.Context, req Request, media Media, rep *status.Reporter) Outcome {
	rep.Update("downloading video…")

	path := filepath.Join(d.ScratchDir, d.filename(media))

	size, err := d.save(ctx, media, path)
	if err != nil {
		removeQuiet(path, d.Log)
		return Failed(&TransferError{URL: req.URL, Err: err})
	}

	if size > d.MaxUploadBytes {
		removeQuiet(path, d.Log)
		return Failed(&TooLargeError{SizeBytes: size, LimitBytes: d.MaxUploadBytes})
	}

	rep.Update("uploading video…")

	err = d.Sender.SendVideoFile(req.ChatID, path, VideoOptions{
		Caption:           Caption(media, size),
		DurationSeconds:   media.DurationSeconds(),
		SupportsStreaming: true,
	})
	removeQuiet(path, d.Log)
	if err != nil {
		return Failed(&TransportError{Op: "sendVideo file", Err: err})
	}

	return Outcome{Method: MethodDownloaded}
}

// save writes the mp4 stream for media to path and returns the number
// of bytes on disk after a complete write.
func (d *DownloadDeliverer) save(ctx context.Context, media Media, path string) (int64, error) {
	stream, sizeHint, err := media.OpenStream(ctx, FlavorMuxedMP4)
	if err != nil {
		return 0, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	t0 := d.clock()()
	n, err := io.Copy(f, stream)
	if err != nil {
		f.Close()
		return 0, fmt.Errorf("download youtu.be/%s: %w", media.SourceID(), err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close file: %w", err)
	}

	d.Log.Info("downloaded video",
		zap.String("video", media.SourceID()),
		zap.Int64("size_mb", n>>20),
		zap.Int64("size_hint_mb", sizeHint>>20),
		zap.Duration("took", time.Since(t0).Truncate(time.Second)),
	)

	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}
	return fi.Size(), nil
}

// filename derives a filesystem-safe name from a time prefix and the
// sanitized title.
func (d *DownloadDeliverer) filename(media Media) string {
	return fmt.Sprintf("%s.%s.mp4", d.clock()().UTC().Format("20060102.150405"), safeName(media.DisplayTitle()))
}

func (d *DownloadDeliverer) clock() func() time.Time {
	if d.now != nil {
		return d.now
	}
	return time.Now
}

// safeName replaces every rune that is not a letter or digit and caps
// the result at 40 runes.
func safeName(s string) string {
	var t []rune
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			r = '.'
		}
		t = append(t, r)
		if len(t) == 40 {
			break
		}
	}
	return string(t)
}

func removeQuiet(path string, log *zap.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("remove temp file", zap.String("path", path), zap.Error(err))
	}
}
