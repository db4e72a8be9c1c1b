package publish

import (
	"cmp"
	"context"
	"fmt"
	"net/http"

	"github.com/lysyi3m/pitch-post/app/database"
)

const (
	KindFacebook = "facebook"
	KindTelegram = "telegram"
)

type SettingsReader interface {
	Get(ctx context.Context, name string) (string, bool, error)
}

// Options carries the configured publisher and the fallback credentials
// used when none are stored in settings.
type Options struct {
	Kind                string
	FacebookPageID      string
	FacebookAccessToken string
	GraphAPIURL         string
	TelegramBotToken    string
	TelegramChatID      string
	TelegramEndpoint    string
	HTTPClient          *http.Client
}

// Resolver builds the publisher for a run from the current settings, so
// credential changes apply without a restart.
type Resolver struct {
	settings SettingsReader
	opts     Options
}

func NewResolver(settings SettingsReader, opts Options) *Resolver {
	return &Resolver{
		settings: settings,
		opts:     opts,
	}
}

func (r *Resolver) Publisher(ctx context.Context) (Publisher, error) {
	switch r.opts.Kind {
	case KindFacebook, "":
		pageID, err := r.setting(ctx, database.SettingFacebookPageID, r.opts.FacebookPageID)
		if err != nil {
			return nil, err
		}
		token, err := r.setting(ctx, database.SettingFacebookAccessToken, r.opts.FacebookAccessToken)
		if err != nil {
			return nil, err
		}
		if pageID == "" || token == "" {
			return nil, fmt.Errorf("%w: facebook page ID and access token are required", ErrNotConfigured)
		}
		return NewFacebookPublisher(r.opts.GraphAPIURL, pageID, token, r.opts.HTTPClient), nil

	case KindTelegram:
		token, err := r.setting(ctx, database.SettingTelegramBotToken, r.opts.TelegramBotToken)
		if err != nil {
			return nil, err
		}
		chatID, err := r.setting(ctx, database.SettingTelegramChatID, r.opts.TelegramChatID)
		if err != nil {
			return nil, err
		}
		if token == "" || chatID == "" {
			return nil, fmt.Errorf("%w: telegram bot token and chat ID are required", ErrNotConfigured)
		}
		return NewTelegramPublisher(token, chatID, r.opts.TelegramEndpoint, r.opts.HTTPClient), nil

	default:
		return nil, fmt.Errorf("unsupported publisher: %s", r.opts.Kind)
	}
}

func (r *Resolver) setting(ctx context.Context, name, fallback string) (string, error) {
	value, _, err := r.settings.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return cmp.Or(value, fallback), nil
}
