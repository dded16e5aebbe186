// Package telegram delivers chat events from the Telegram Bot API using long polling.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"magnet-bot/internal/chat"
)

type Config struct {
	Token string
	// UserID is the only Telegram account whose updates reach the handler.
	UserID int64
	// Proxy is an optional HTTP(S) proxy URL for every Bot API call.
	Proxy string
	// SendRate caps outbound API calls per second.
	SendRate float64
	Debug    bool
	Commands []chat.CommandInfo
	Logger   *logrus.Logger
}

// botAPI is the subset of *tgbotapi.BotAPI the transport uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Transport polls Telegram for updates and hands them to a chat.Handler sequentially.
type Transport struct {
	cfg      Config
	api      botAPI
	username string
	http     *http.Client
	limiter  *rate.Limiter
	logger   *logrus.Logger
}

func New(cfg Config) (*Transport, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.SendRate <= 0 {
		cfg.SendRate = 20
	}

	httpClient := &http.Client{Timeout: 90 * time.Second}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	api.Debug = cfg.Debug

	return &Transport{
		cfg:      cfg,
		api:      api,
		username: api.Self.UserName,
		http:     httpClient,
		limiter:  rate.NewLimiter(rate.Limit(cfg.SendRate), 1),
		logger:   cfg.Logger,
	}, nil
}

// RegisterCommands publishes the command list shown by Telegram clients.
func (t *Transport) RegisterCommands(ctx context.Context) error {
	if len(t.cfg.Commands) == 0 {
		return nil
	}
	cmds := make([]tgbotapi.BotCommand, len(t.cfg.Commands))
	for i, c := range t.cfg.Commands {
		cmds[i] = tgbotapi.BotCommand{Command: c.Name, Description: c.Description}
	}
	if err := t.request(ctx, tgbotapi.NewSetMyCommands(cmds...)); err != nil {
		return fmt.Errorf("set bot commands: %w", err)
	}
	return nil
}

// Run consumes updates until ctx is done. Each update is handled to completion before the next.
func (t *Transport) Run(ctx context.Context, h chat.Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.api.GetUpdatesChan(u)
	defer t.api.StopReceivingUpdates()

	t.logger.Infof("polling telegram as @%s", t.username)
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.dispatch(ctx, h, update)
		}
	}
}

func (t *Transport) dispatch(ctx context.Context, h chat.Handler, update tgbotapi.Update) {
	logger := t.logger.WithField("update_id", update.UpdateID)
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("handler panic: %v", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if !t.authorized(q.From) {
			logger.Warn("ignoring selection from unauthorized user")
			return
		}
		if q.Message == nil {
			// Inline-mode selections carry no chat to reply to; only stop the client spinner.
			logger.Warn("ignoring selection without a message")
			if err := t.replier(0, q.ID).Answer(ctx); err != nil {
				logger.WithError(err).Warn("acknowledge selection")
			}
			return
		}
		h.HandleSelection(ctx, t.replier(q.Message.Chat.ID, q.ID), q.Data)

	case update.Message != nil:
		msg := update.Message
		if !t.authorized(msg.From) {
			logger.Warn("ignoring message from unauthorized user")
			return
		}
		r := t.replier(msg.Chat.ID, "")
		switch {
		case msg.IsCommand():
			h.HandleCommand(ctx, r, msg.Command(), strings.Fields(msg.CommandArguments()))
		case msg.Document != nil && isTorrentFile(msg.Document.FileName):
			h.HandleDocument(ctx, r, chat.Document{
				FileName: msg.Document.FileName,
				Save:     t.saver(msg.Document.FileID),
			})
		}
	}
}

func (t *Transport) authorized(u *tgbotapi.User) bool {
	return u != nil && u.ID == t.cfg.UserID
}

func isTorrentFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".torrent")
}

// saver downloads an attachment to a local path.
func (t *Transport) saver(fileID string) func(ctx context.Context, dst string) error {
	return func(ctx context.Context, dst string) error {
		link, err := t.api.GetFileDirectURL(fileID)
		if err != nil {
			return fmt.Errorf("resolve file url: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
		if err != nil {
			return fmt.Errorf("build file request: %w", err)
		}
		resp, err := t.http.Do(req)
		if err != nil {
			return fmt.Errorf("download file: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("download file: status %d", resp.StatusCode)
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create file dir: %w", err)
		}
		out, err := os.Create(dst)
		if err != nil {
			return fmt.Errorf("create file: %w", err)
		}
		if _, err := io.Copy(out, resp.Body); err != nil {
			_ = out.Close()
			return fmt.Errorf("write file: %w", err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("close file: %w", err)
		}
		return nil
	}
}

func (t *Transport) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := t.api.Send(c); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (t *Transport) request(ctx context.Context, c tgbotapi.Chattable) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := t.api.Request(c); err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	return nil
}

func (t *Transport) replier(chatID int64, callbackID string) *replier {
	return &replier{t: t, chatID: chatID, callbackID: callbackID}
}

type replier struct {
	t          *Transport
	chatID     int64
	callbackID string
}

func (r *replier) SendText(ctx context.Context, text string) error {
	return r.t.send(ctx, tgbotapi.NewMessage(r.chatID, text))
}

func (r *replier) SendMenu(ctx context.Context, text string, menu []chat.Option) error {
	msg := tgbotapi.NewMessage(r.chatID, text)
	if len(menu) > 0 {
		msg.ReplyMarkup = keyboard(menu)
	}
	return r.t.send(ctx, msg)
}

func (r *replier) SendPhoto(ctx context.Context, png []byte, caption string, menu []chat.Option) error {
	photo := tgbotapi.NewPhoto(r.chatID, tgbotapi.FileBytes{Name: "report.png", Bytes: png})
	photo.Caption = caption
	if len(menu) > 0 {
		photo.ReplyMarkup = keyboard(menu)
	}
	return r.t.send(ctx, photo)
}

func (r *replier) Answer(ctx context.Context) error {
	if r.callbackID == "" {
		return nil
	}
	return r.t.request(ctx, tgbotapi.NewCallback(r.callbackID, ""))
}

// keyboard lays out one button per row.
func keyboard(menu []chat.Option) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(menu))
	for _, o := range menu {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(o.Label, o.Data)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

var _ chat.Replier = (*replier)(nil)
