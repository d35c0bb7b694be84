package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	sent    []byte
	name    string
	fileID  string
	sendErr error
	link    string
	linkErr error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if b.sendErr != nil {
		return tgbotapi.Message{}, b.sendErr
	}
	doc := c.(tgbotapi.DocumentConfig)
	fr := doc.File.(tgbotapi.FileReader)
	data, err := io.ReadAll(fr.Reader)
	if err != nil {
		return tgbotapi.Message{}, err
	}
	b.sent, b.name = data, fr.Name
	return tgbotapi.Message{Document: &tgbotapi.Document{FileID: b.fileID}}, nil
}

func (b *fakeBot) GetFileDirectURL(string) (string, error) {
	return b.link, b.linkErr
}

func TestRelay_Put(t *testing.T) {
	bot := &fakeBot{fileID: "BQACAgIAAxk"}
	s := newRelay(bot, "", -100123, http.DefaultClient)

	info, err := s.Put(context.Background(), "Ab3_x9-QzK.txt", strings.NewReader("hello"), PutObjectOptions{ContentType: "text/plain"})

	require.NoError(t, err)
	assert.Equal(t, "BQACAgIAAxk", info.Key)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "hello", string(bot.sent))
	assert.Equal(t, "Ab3_x9-QzK.txt", bot.name)
}

func TestRelay_PutErrors(t *testing.T) {
	t.Run("send fails", func(t *testing.T) {
		s := newRelay(&fakeBot{sendErr: errors.New("flood")}, "", 1, http.DefaultClient)
		_, err := s.Put(context.Background(), "k.txt", strings.NewReader("x"), PutObjectOptions{})
		assert.ErrorContains(t, err, "flood")
	})

	t.Run("no document in reply", func(t *testing.T) {
		s := newRelay(&fakeBot{}, "", 1, http.DefaultClient)
		_, err := s.Put(context.Background(), "k.txt", strings.NewReader("x"), PutObjectOptions{})
		assert.Error(t, err)
	})
}

func TestRelay_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/file/ok":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("hello"))
		case "/file/gone":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	t.Run("streams body", func(t *testing.T) {
		s := newRelay(&fakeBot{link: srv.URL + "/file/ok"}, "", 1, srv.Client())
		rc, info, err := s.Get(context.Background(), "BQACAgIAAxk")
		require.NoError(t, err)
		defer rc.Close()
		body, _ := io.ReadAll(rc)
		assert.Equal(t, "hello", string(body))
		assert.Equal(t, int64(5), info.Size)
		assert.Equal(t, "text/plain", info.ContentType)
	})

	t.Run("unknown file id", func(t *testing.T) {
		s := newRelay(&fakeBot{linkErr: &tgbotapi.Error{Code: 400, Message: "Bad Request: invalid file_id"}}, "", 1, srv.Client())
		_, _, err := s.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("download 404", func(t *testing.T) {
		s := newRelay(&fakeBot{link: srv.URL + "/file/gone"}, "", 1, srv.Client())
		_, _, err := s.Get(context.Background(), "x")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("download failure", func(t *testing.T) {
		s := newRelay(&fakeBot{link: srv.URL + "/file/broken"}, "", 1, srv.Client())
		_, _, err := s.Get(context.Background(), "x")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrObjectNotFound)
	})
}

func TestRelay_ErrorsHideBotToken(t *testing.T) {
	const token = "123456:SECRET-TOKEN"

	closed := httptest.NewServer(http.NotFoundHandler())
	deadURL := closed.URL
	closed.Close()

	tests := []struct {
		name string
		bot  *fakeBot
	}{
		{
			name: "download transport failure",
			bot:  &fakeBot{link: deadURL + "/file/bot" + token + "/documents/file_0.txt"},
		},
		{
			name: "resolve transport failure",
			bot: &fakeBot{linkErr: &url.Error{
				Op:  "Post",
				URL: "https://api.telegram.org/bot" + token + "/getFile",
				Err: errors.New("i/o timeout"),
			}},
		},
		{
			name: "token in plain error text",
			bot:  &fakeBot{linkErr: errors.New("bad gateway from /bot" + token + "/getFile")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newRelay(tt.bot, token, 1, http.DefaultClient)

			_, _, err := s.Get(context.Background(), "BQACAgIAAxk")

			require.Error(t, err)
			assert.NotContains(t, err.Error(), token)
			assert.NotContains(t, err.Error(), "SECRET-TOKEN")
		})
	}

	t.Run("send failure", func(t *testing.T) {
		bot := &fakeBot{sendErr: &url.Error{Op: "Post", URL: "https://api.telegram.org/bot" + token + "/sendDocument", Err: errors.New("connection reset")}}
		s := newRelay(bot, token, 1, http.DefaultClient)

		_, err := s.Put(context.Background(), "k.txt", strings.NewReader("x"), PutObjectOptions{})

		require.Error(t, err)
		assert.NotContains(t, err.Error(), token)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestRelay_DeleteIsNoop(t *testing.T) {
	s := newRelay(&fakeBot{}, "", 1, http.DefaultClient)
	assert.NoError(t, s.Delete(context.Background(), "anything"))
}
