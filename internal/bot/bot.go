package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"stats_bot/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	ErrMissingToken       = errors.New("TELEGRAM_BOT_TOKEN is not set")
	ErrMissingDestination = errors.New("CHANNEL_ID is not set")
	ErrNotIdentified      = errors.New("bot is not identified yet")
)

// Identity описывает самого бота (ответ getMe).
type Identity struct {
	ID        int64
	FirstName string
	UserName  string
}

// Destination описывает канал или чат, куда уходит подтверждение (ответ getChat).
type Destination struct {
	ID       int64
	Title    string
	UserName string
	Type     string
}

type Bot struct {
	api    *tgbotapi.BotAPI
	config config.Config
	client *http.Client
}

// New does no network I/O. The first call that reaches Telegram is Identify.
func New(cfg config.Config) *Bot {
	return &Bot{
		config: cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// Identify authorizes the token via getMe and keeps the API handle for later calls.
func (b *Bot) Identify(ctx context.Context) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	if b.config.TelegramToken == "" {
		return Identity{}, ErrMissingToken
	}

	endpoint := b.config.TelegramEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	api, err := tgbotapi.NewBotAPIWithClient(b.config.TelegramToken, endpoint, b.client)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to authorize bot: %w", err)
	}
	api.Debug = b.config.Debug
	b.api = api

	return Identity{
		ID:        api.Self.ID,
		FirstName: api.Self.FirstName,
		UserName:  api.Self.UserName,
	}, nil
}

// ResolveDestination looks the chat up by numeric id or @username.
func (b *Bot) ResolveDestination(ctx context.Context, chatID string) (Destination, error) {
	if err := ctx.Err(); err != nil {
		return Destination{}, err
	}
	if b.api == nil {
		return Destination{}, ErrNotIdentified
	}
	if strings.TrimSpace(chatID) == "" {
		return Destination{}, ErrMissingDestination
	}

	chat, err := b.api.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: chatConfig(chatID)})
	if err != nil {
		return Destination{}, fmt.Errorf("failed to get chat %s: %w", chatID, err)
	}

	return Destination{
		ID:       chat.ID,
		Title:    chat.Title,
		UserName: chat.UserName,
		Type:     chat.Type,
	}, nil
}

// Publish sends an HTML-formatted message to the chat.
func (b *Bot) Publish(ctx context.Context, chatID string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.api == nil {
		return ErrNotIdentified
	}
	if strings.TrimSpace(chatID) == "" {
		return ErrMissingDestination
	}

	var msg tgbotapi.MessageConfig
	if cc := chatConfig(chatID); cc.SuperGroupUsername != "" {
		msg = tgbotapi.NewMessageToChannel(cc.SuperGroupUsername, text)
	} else {
		msg = tgbotapi.NewMessage(cc.ChatID, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// chatConfig: "-100123" -> числовой ID, всё остальное (обычно "@channel") -> username
func chatConfig(chatID string) tgbotapi.ChatConfig {
	chatID = strings.TrimSpace(chatID)
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return tgbotapi.ChatConfig{ChatID: id}
	}
	if !strings.HasPrefix(chatID, "@") {
		chatID = "@" + chatID
	}
	return tgbotapi.ChatConfig{SuperGroupUsername: chatID}
}
