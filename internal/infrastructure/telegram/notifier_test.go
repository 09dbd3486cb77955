package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDigest(t *testing.T) {
	var gotPath, gotChat, gotText, gotMode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotChat = r.FormValue("chat_id")
		gotText = r.FormValue("text")
		gotMode = r.FormValue("parse_mode")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewNotifier("bot-token", "-100123")
	n.baseURL = srv.URL
	n.client = srv.Client()

	require.NoError(t, n.PublishDigest(context.Background(), "*2 open funding calls*"))
	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
	assert.Equal(t, "-100123", gotChat)
	assert.Equal(t, "*2 open funding calls*", gotText)
	assert.Equal(t, "Markdown", gotMode)
}

func TestPublishDigestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewNotifier("bot-token", "-100123")
	n.baseURL = srv.URL
	n.client = srv.Client()

	err := n.PublishDigest(context.Background(), "digest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram error")
}

func TestPublishDigestMisconfigured(t *testing.T) {
	err := NewNotifier("", "").PublishDigest(context.Background(), "digest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "misconfigured")
}
