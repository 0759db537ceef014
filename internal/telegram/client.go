// Package telegram adapts the Bot API SDK to the narrow transport
// surface the rest of the bot consumes.
package telegram

import (
	"fmt"
	"io"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/clipferry/clipferry/internal/delivery"
	"github.com/clipferry/clipferry/internal/status"
)

// Client wraps a Bot API session. It implements status.Messenger and
// delivery.VideoSender.
type Client struct {
	api *tgbotapi.BotAPI
	log *zap.Logger
}

var (
	_ status.Messenger     = (*Client)(nil)
	_ delivery.VideoSender = (*Client)(nil)
)

func New(token string, log *zap.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("bot init: %w", err)
	}
	log.Info("authorized", zap.String("bot", api.Self.UserName))
	return &Client{api: api, log: log}, nil
}

// Updates returns the long-poll update channel.
func (c *Client) Updates(pollTimeoutSecs int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSecs
	return c.api.GetUpdatesChan(u)
}

// Stop shuts down the update channel.
func (c *Client) Stop() {
	c.api.StopReceivingUpdates()
}

func (c *Client) SendMessage(chatID int64, text string) (status.MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("sendMessage: %w", err)
	}
	return status.MessageRef(sent.MessageID), nil
}

func (c *Client) ReplyMessage(chatID int64, replyTo int, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	msg.ReplyToMessageID = replyTo
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	return nil
}

func (c *Client) EditMessage(chatID int64, ref status.MessageRef, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, int(ref), text)
	if _, err := c.api.Send(edit); err != nil {
		return fmt.Errorf("editMessageText: %w", err)
	}
	return nil
}

func (c *Client) DeleteMessage(chatID int64, ref status.MessageRef) error {
	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, int(ref))); err != nil {
		return fmt.Errorf("deleteMessage: %w", err)
	}
	return nil
}

// SendVideoStream uploads a live byte stream as a video.
func (c *Client) SendVideoStream(chatID int64, filename string, r io.Reader, opt delivery.VideoOptions) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FileReader{Name: filename, Reader: r})
	return c.sendVideo(video, opt)
}

// SendVideoFile uploads a local file as a video.
func (c *Client) SendVideoFile(chatID int64, path string, opt delivery.VideoOptions) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	return c.sendVideo(video, opt)
}

func (c *Client) sendVideo(video tgbotapi.VideoConfig, opt delivery.VideoOptions) error {
	video.Caption = opt.Caption
	video.Duration = opt.DurationSeconds
	video.SupportsStreaming = opt.SupportsStreaming
	t0 := time.Now()
	if _, err := c.api.Send(video); err != nil {
		return fmt.Errorf("sendVideo: %w", err)
	}
	c.log.Info("sent video", zap.Duration("took", time.Since(t0).Truncate(time.Second)))
	return nil
}
