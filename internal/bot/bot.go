// Package bot runs the update loop and drives one request per incoming
// message through resolve → select → deliver → report.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clipferry/clipferry/internal/delivery"
	"github.com/clipferry/clipferry/internal/metrics"
	"github.com/clipferry/clipferry/internal/status"
	"github.com/clipferry/clipferry/internal/youtube"
)

const helpText = `Send me a YouTube link and I will reply with the video.
Short clips are sent right away; longer ones are downloaded first (up to the upload size limit).`

// Messenger is the transport surface the handler itself touches.
type Messenger interface {
	status.Messenger
	ReplyMessage(chatID int64, replyTo int, text string) error
}

// ResolveFunc fetches playable metadata for a video id.
type ResolveFunc func(ctx context.Context, videoID string) (delivery.Media, error)

// Runner carries a resolved request to the chat.
type Runner interface {
	Run(ctx context.Context, req delivery.Request, media delivery.Media, rep *status.Reporter) delivery.Outcome
}

// Bot owns the long-poll loop and the per-request handlers.
type Bot struct {
	tg       Messenger
	resolve  ResolveFunc
	pipeline Runner
	log      *zap.Logger
}

func New(tg Messenger, resolve ResolveFunc, pipeline Runner, log *zap.Logger) *Bot {
	return &Bot{tg: tg, resolve: resolve, pipeline: pipeline, log: log}
}

// Run consumes updates until the channel closes or ctx is cancelled.
// Every text message gets its own goroutine; requests share nothing, so
// there is no coordination between them.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			msg := u.Message
			if msg == nil || msg.Text == "" {
				continue
			}
			go b.Handle(ctx, msg.Chat.ID, msg.MessageID, msg.Text)
		}
	}
}

// Handle processes one incoming text message end to end. Every failure
// is converted to a user-visible status update; nothing escapes to
// crash the process.
func (b *Bot) Handle(ctx context.Context, chatID int64, messageID int, text string) {
	log := b.log.With(
		zap.String("request_id", uuid.NewString()),
		zap.Int64("chat_id", chatID),
	)
	defer func() {
		if p := recover(); p != nil {
			metrics.Panics.Inc()
			log.Error("request panicked", zap.Any("panic", p), zap.Stack("stack"))
		}
	}()

	if text == "/start" || text == "/help" {
		if err := b.tg.ReplyMessage(chatID, messageID, helpText); err != nil {
			log.Warn("send help", zap.Error(err))
		}
		return
	}

	videoID, err := youtube.ExtractVideoID(text)
	if err != nil {
		metrics.Errors.WithLabelValues(errorKind(err)).Inc()
		log.Info("rejected message", zap.Error(err))
		if err := b.tg.ReplyMessage(chatID, messageID, "That doesn't look like a YouTube link. "+helpText); err != nil {
			log.Warn("send reject reply", zap.Error(err))
		}
		return
	}

	req := delivery.Request{ChatID: chatID, URL: "youtu.be/" + videoID, RequestedAt: time.Now()}
	log = log.With(zap.String("video", videoID))

	rep := status.NewReporter(b.tg, log, chatID)
	rep.Begin("fetching video info…")

	media, err := b.resolve(ctx, videoID)
	if err != nil {
		b.fail(log, rep, err)
		return
	}
	log.Info("resolved video",
		zap.String("title", media.DisplayTitle()),
		zap.Int("duration_seconds", media.DurationSeconds()),
	)

	out := b.pipeline.Run(ctx, req, media, rep)
	if out.Err != nil {
		b.fail(log, rep, out.Err)
		return
	}

	metrics.Deliveries.WithLabelValues(string(out.Method)).Inc()
	log.Info("delivered video", zap.String("method", string(out.Method)))
	rep.Done()
}

func (b *Bot) fail(log *zap.Logger, rep *status.Reporter, err error) {
	metrics.Errors.WithLabelValues(errorKind(err)).Inc()
	log.Error("request failed", zap.String("kind", errorKind(err)), zap.Error(err))
	rep.Fail(userMessage(err))
}

// errorKind maps an error to its taxonomy label.
func errorKind(err error) string {
	var (
		invalidURL *youtube.InvalidURLError
		extraction *youtube.ExtractionError
		tooLarge   *delivery.TooLargeError
		transfer   *delivery.TransferError
		transport  *delivery.TransportError
	)
	switch {
	case errors.As(err, &invalidURL):
		return "invalid_url"
	case errors.As(err, &extraction):
		return "extraction"
	case errors.As(err, &tooLarge):
		return "too_large"
	case errors.As(err, &transfer):
		return "transfer"
	case errors.As(err, &transport):
		return "transport"
	}
	return "other"
}

// userMessage renders an error for the chat: enough of the underlying
// reason to act on, none of the internal detail.
func userMessage(err error) string {
	var (
		extraction *youtube.ExtractionError
		tooLarge   *delivery.TooLargeError
		transfer   *delivery.TransferError
		transport  *delivery.TransportError
	)
	switch {
	case errors.As(err, &extraction):
		return fmt.Sprintf("Couldn't fetch video info: %v", extraction.Err)
	case errors.As(err, &tooLarge):
		return fmt.Sprintf("Can't send this one: %s.", tooLarge.Error())
	case errors.As(err, &transfer):
		return fmt.Sprintf("Download failed: %v", transfer.Err)
	case errors.As(err, &transport):
		return fmt.Sprintf("Upload failed: %v", transport.Err)
	}
	return fmt.Sprintf("Something went wrong: %v", err)
}
