package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift-advisor/internal/domain"
	"gift-advisor/internal/infra/config"
)

func newTestAdvisor(t *testing.T, h http.HandlerFunc) *OpenAIAdvisor {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewOpenAIAdvisor(config.AdvisorConfig{
		BaseURL: srv.URL + "/",
		APIKey:  "test-key",
		Model:   "gpt-test",
	}, slog.New(slog.DiscardHandler))
}

func writeChatContent(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":%q}}]}`, content)
}

func TestOpenAIStreamTrending(t *testing.T) {
	a := newTestAdvisor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "gpt-test", req.Model)
		assert.Contains(t, req.Messages[1].Content, "Noelia Mora")

		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range []string{"Le ", "gusta ", "", "el café"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", c)
		}
		io.WriteString(w, "data: not-json\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	})

	var got []string
	err := a.StreamTrending(context.Background(), "Noelia Mora", func(s string) error {
		got = append(got, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Le ", "gusta ", "el café"}, got)
	assert.Equal(t, "openai", a.Name())
}

func TestOpenAIStreamTrendingHTTPError(t *testing.T) {
	a := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"slow down"}`, http.StatusTooManyRequests)
	})

	err := a.StreamTrending(context.Background(), "Noelia Mora", func(string) error { return nil })
	require.Error(t, err)
	assert.Equal(t, domain.CodeRateLimit, domain.ErrorCodeOf(err))
	assert.Contains(t, err.Error(), "slow down")
}

func TestOpenAIStreamTrendingEmitError(t *testing.T) {
	a := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n\n")
	})

	calls := 0
	err := a.StreamTrending(context.Background(), "Noelia Mora", func(string) error {
		calls++
		return io.ErrClosedPipe
	})
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Equal(t, 1, calls)
}

func TestOpenAIGiftIdeas(t *testing.T) {
	a := newTestAdvisor(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		assert.False(t, req.Stream)

		writeChatContent(w, "```json\n"+`{"giftIdeas":[
			{"name":"Taza","description":"Para el café","link":"https://example.com/taza"},
			{"name":"Libro","description":"De cocina"}
		]}`+"\n```")
	})

	ideas, err := a.GiftIdeas(context.Background(), "Noelia Mora")
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	assert.Equal(t, domain.GiftIdea{Name: "Taza", Description: "Para el café", Link: "https://example.com/taza"}, ideas[0])
	assert.Empty(t, ideas[1].Link)
}

func TestOpenAIGiftIdeasSchemaViolation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "Aquí tienes tres ideas..."},
		{"missing list", `{"ideas":[]}`},
		{"empty list", `{"giftIdeas":[]}`},
		{"missing description", `{"giftIdeas":[{"name":"Taza"}]}`},
		{"wrong type", `{"giftIdeas":[{"name":1,"description":"x"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
				writeChatContent(w, tt.content)
			})
			_, err := a.GiftIdeas(context.Background(), "Noelia Mora")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrSchemaViolation)
			assert.Equal(t, domain.CodeSchemaViolation, domain.ErrorCodeOf(err))
		})
	}
}

func TestOpenAIGiftIdeasNoChoices(t *testing.T) {
	a := newTestAdvisor(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	})
	_, err := a.GiftIdeas(context.Background(), "Noelia Mora")
	assert.ErrorIs(t, err, domain.ErrProviderError)
}

func TestOpenAIGiftIdeasCancelled(t *testing.T) {
	a := newTestAdvisor(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.GiftIdeas(ctx, "Noelia Mora")
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, domain.IsCancelled(err))
}

func TestOpenAIUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	a := NewOpenAIAdvisor(config.AdvisorConfig{BaseURL: url, Model: "m"}, slog.New(slog.DiscardHandler))
	_, err := a.GiftIdeas(context.Background(), "Noelia Mora")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderError)
	assert.False(t, strings.Contains(err.Error(), "Bearer"))
}
