// internal/platform/rest_test.go
package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	var gotPath, gotAuth string
	var gotView View
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotView))
		json.NewEncoder(w).Encode(MessageRef{MessageID: "m42"})
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, "secret")
	ref, err := c.SendMessage(context.Background(), "chan9", View{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "POST /channels/chan9/messages", gotPath)
	assert.Equal(t, "Bot secret", gotAuth)
	assert.Equal(t, "hello", gotView.Content)
	assert.Equal(t, "m42", ref.MessageID)
	assert.Equal(t, "chan9", ref.ChannelID, "channel id filled in when the adapter omits it")
}

func TestEditMessagePath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, "")
	err := c.EditMessage(context.Background(), MessageRef{ChannelID: "c1", MessageID: "m1"}, View{})
	require.NoError(t, err)
	assert.Equal(t, "PATCH /channels/c1/messages/m1", gotPath)
}

func TestErrorStatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewRESTClient(srv.URL, "")
	err := c.UpdateInteractionResponse(context.Background(), "int1", View{Content: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
