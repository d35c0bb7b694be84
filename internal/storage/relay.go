package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"catbox/internal/config"
)

type relayBot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// relayStorage keeps blobs as documents posted to a chat. The reference is the
// chat's file id. The chat keeps its history, so Delete does nothing.
type relayStorage struct {
	bot    relayBot
	token  string
	chatID int64
	http   *http.Client
}

// NewRelay connects to the bot API and returns a chat-backed store.
func NewRelay(cfg config.RelayConfig) (Storage, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("relay bot token is required")
	}
	if cfg.ChatID == 0 {
		return nil, fmt.Errorf("relay chat id is required")
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect relay bot: %w", err)
	}
	return newRelay(bot, cfg.BotToken, cfg.ChatID, client), nil
}

func newRelay(bot relayBot, token string, chatID int64, client *http.Client) *relayStorage {
	return &relayStorage{bot: bot, token: token, chatID: chatID, http: client}
}

func (s *relayStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	cr := &countingReader{r: r}
	msg, err := s.bot.Send(tgbotapi.NewDocument(s.chatID, tgbotapi.FileReader{Name: key, Reader: cr}))
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("relay send: %w", s.scrub(err))
	}
	if msg.Document == nil || msg.Document.FileID == "" {
		return ObjectInfo{}, errors.New("relay send: response carries no document")
	}
	return ObjectInfo{
		Key:          msg.Document.FileID,
		Size:         cr.n,
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}

func (s *relayStorage) Get(ctx context.Context, ref string) (io.ReadCloser, ObjectInfo, error) {
	link, err := s.bot.GetFileDirectURL(ref)
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
			return nil, ObjectInfo{}, ErrObjectNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("relay resolve file: %w", s.scrub(err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("relay download: %w", s.scrub(err))
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("relay download: %w", s.scrub(err))
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, ObjectInfo{}, ErrObjectNotFound
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, ObjectInfo{}, fmt.Errorf("relay download: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, ObjectInfo{
		Key:         ref,
		Size:        resp.ContentLength,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (s *relayStorage) Delete(ctx context.Context, ref string) error {
	return nil
}

// scrub strips request URLs from err. Bot API URLs embed the bot token.
func (s *relayStorage) scrub(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	if s.token != "" && strings.Contains(err.Error(), s.token) {
		return errors.New(strings.ReplaceAll(err.Error(), s.token, "<redacted>"))
	}
	return err
}
