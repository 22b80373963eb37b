package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"stats_bot/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "123456:test-token"

// fakeTelegram answers Bot API methods with canned results and records the form of every call.
type fakeTelegram struct {
	mu      sync.Mutex
	results map[string]any
	calls   map[string][]map[string]string
}

func newFakeTelegram(t *testing.T, results map[string]any) (*fakeTelegram, *httptest.Server) {
	t.Helper()
	f := &fakeTelegram{results: results, calls: make(map[string][]map[string]string)}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefix := "/bot" + testToken + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": 401, "description": "Unauthorized"})
		return
	}
	method := strings.TrimPrefix(r.URL.Path, prefix)

	_ = r.ParseForm()
	form := make(map[string]string)
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}

	f.mu.Lock()
	f.calls[method] = append(f.calls[method], form)
	result, ok := f.results[method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": 400, "description": "Bad Request: chat not found"})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

func (f *fakeTelegram) Calls(method string) []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func testConfig(srv *httptest.Server, token string) config.Config {
	return config.Config{
		TelegramToken:    token,
		TelegramEndpoint: srv.URL + "/bot%s/%s",
		RequestTimeout:   5 * time.Second,
	}
}

var (
	meResult = map[string]any{
		"id": 777, "is_bot": true, "first_name": "Marvel Stats", "username": "marvel_stats_bot",
	}
	chatResult = map[string]any{
		"id": -1001234567890, "type": "channel", "title": "MarvelMarket", "username": "marvelmarket",
	}
	messageResult = map[string]any{
		"message_id": 42, "date": 1700000000, "chat": map[string]any{"id": -1001234567890, "type": "channel"},
	}
)

func TestBot_Identify(t *testing.T) {
	_, srv := newFakeTelegram(t, map[string]any{"getMe": meResult})
	b := New(testConfig(srv, testToken))

	id, err := b.Identify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: 777, FirstName: "Marvel Stats", UserName: "marvel_stats_bot"}, id)
}

func TestBot_Identify_MissingToken(t *testing.T) {
	f, srv := newFakeTelegram(t, map[string]any{"getMe": meResult})
	b := New(testConfig(srv, ""))

	_, err := b.Identify(context.Background())
	require.ErrorIs(t, err, ErrMissingToken)
	assert.Empty(t, f.Calls("getMe"))
}

func TestBot_Identify_Unauthorized(t *testing.T) {
	_, srv := newFakeTelegram(t, map[string]any{"getMe": meResult})
	b := New(testConfig(srv, "999:wrong"))

	_, err := b.Identify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestBot_Identify_CancelledContext(t *testing.T) {
	f, srv := newFakeTelegram(t, map[string]any{"getMe": meResult})
	b := New(testConfig(srv, testToken))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Identify(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.Calls("getMe"))
}

func TestBot_ResolveDestination(t *testing.T) {
	f, srv := newFakeTelegram(t, map[string]any{"getMe": meResult, "getChat": chatResult})
	b := New(testConfig(srv, testToken))

	_, err := b.Identify(context.Background())
	require.NoError(t, err)

	dest, err := b.ResolveDestination(context.Background(), "-1001234567890")
	require.NoError(t, err)
	assert.Equal(t, Destination{ID: -1001234567890, Title: "MarvelMarket", UserName: "marvelmarket", Type: "channel"}, dest)

	calls := f.Calls("getChat")
	require.Len(t, calls, 1)
	assert.Equal(t, "-1001234567890", calls[0]["chat_id"])
}

func TestBot_ResolveDestination_Username(t *testing.T) {
	f, srv := newFakeTelegram(t, map[string]any{"getMe": meResult, "getChat": chatResult})
	b := New(testConfig(srv, testToken))

	_, err := b.Identify(context.Background())
	require.NoError(t, err)

	_, err = b.ResolveDestination(context.Background(), "marvelmarket")
	require.NoError(t, err)

	calls := f.Calls("getChat")
	require.Len(t, calls, 1)
	assert.Equal(t, "@marvelmarket", calls[0]["chat_id"])
}

func TestBot_ResolveDestination_Errors(t *testing.T) {
	_, srv := newFakeTelegram(t, map[string]any{"getMe": meResult})

	t.Run("not identified", func(t *testing.T) {
		b := New(testConfig(srv, testToken))
		_, err := b.ResolveDestination(context.Background(), "@marvelmarket")
		require.ErrorIs(t, err, ErrNotIdentified)
	})

	t.Run("missing destination", func(t *testing.T) {
		b := New(testConfig(srv, testToken))
		_, err := b.Identify(context.Background())
		require.NoError(t, err)

		_, err = b.ResolveDestination(context.Background(), " ")
		require.ErrorIs(t, err, ErrMissingDestination)
	})

	t.Run("chat not found", func(t *testing.T) {
		b := New(testConfig(srv, testToken))
		_, err := b.Identify(context.Background())
		require.NoError(t, err)

		_, err = b.ResolveDestination(context.Background(), "-100404")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chat not found")
	})
}

func TestBot_Publish(t *testing.T) {
	f, srv := newFakeTelegram(t, map[string]any{"getMe": meResult, "sendMessage": messageResult})
	b := New(testConfig(srv, testToken))

	_, err := b.Identify(context.Background())
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), "-1001234567890", "<b>hi</b>"))
	require.NoError(t, b.Publish(context.Background(), "@marvelmarket", "<b>hi</b>"))

	calls := f.Calls("sendMessage")
	require.Len(t, calls, 2)
	assert.Equal(t, "-1001234567890", calls[0]["chat_id"])
	assert.Equal(t, "@marvelmarket", calls[1]["chat_id"])
	for _, c := range calls {
		assert.Equal(t, "<b>hi</b>", c["text"])
		assert.Equal(t, "HTML", c["parse_mode"])
	}
}

func TestBot_Publish_NotIdentified(t *testing.T) {
	_, srv := newFakeTelegram(t, nil)
	b := New(testConfig(srv, testToken))

	err := b.Publish(context.Background(), "@marvelmarket", "text")
	require.ErrorIs(t, err, ErrNotIdentified)
}

func TestChatConfig(t *testing.T) {
	assert.Equal(t, int64(-100123), chatConfig("-100123").ChatID)
	assert.Equal(t, "@chan", chatConfig("@chan").SuperGroupUsername)
	assert.Equal(t, "@chan", chatConfig(" chan ").SuperGroupUsername)
}
