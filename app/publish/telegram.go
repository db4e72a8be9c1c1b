package publish

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/unicode/norm"
)

// Telegram limits photo captions to 1024 characters.
const telegramCaptionLimit = 1024

type TelegramPublisher struct {
	token      string
	chatID     string
	endpoint   string
	httpClient *http.Client
}

// NewTelegramPublisher creates a publisher for a chat ID or @channel name.
// An empty endpoint selects the public Bot API.
func NewTelegramPublisher(token, chatID, endpoint string, httpClient *http.Client) *TelegramPublisher {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &TelegramPublisher{
		token:      token,
		chatID:     chatID,
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

func (p *TelegramPublisher) Name() string {
	return "telegram"
}

func (p *TelegramPublisher) Publish(ctx context.Context, post Post) (string, error) {
	if post.ImageURL == "" {
		return "", fmt.Errorf("telegram post requires an image")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(p.token, p.endpoint, p.httpClient)
	if err != nil {
		return "", fmt.Errorf("failed to create telegram bot: %w", err)
	}

	var photo tgbotapi.PhotoConfig
	if id, err := strconv.ParseInt(p.chatID, 10, 64); err == nil {
		photo = tgbotapi.NewPhoto(id, tgbotapi.FileURL(post.ImageURL))
	} else {
		photo = tgbotapi.NewPhotoToChannel(p.chatID, tgbotapi.FileURL(post.ImageURL))
	}
	photo.Caption = Caption(post)

	msg, err := bot.Send(photo)
	if err != nil {
		return "", fmt.Errorf("failed to send telegram photo: %w", err)
	}

	return strconv.Itoa(msg.MessageID), nil
}

// Caption is the formatted message in NFC form, cut to the photo caption limit.
func Caption(post Post) string {
	return truncateRunes(norm.NFC.String(FormatMessage(post)), telegramCaptionLimit)
}
