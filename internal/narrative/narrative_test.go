package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BackoffBase: time.Millisecond, BackoffMultiplier: 1, MaxBackoff: time.Millisecond}
}

func completion(text string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": text}}},
	})
	return string(b)
}

func TestGenerateSendsChatRequest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, completion("hello"))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL+"/v1/", "gpt-test", "sk-test", WithLogger(quiet))
	out, err := c.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Content)
}

func TestGenerateRetriesTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, completion("ok"))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "m", "k", WithRetryConfig(fastRetry()), WithLogger(quiet))
	out, err := c.Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGenerateStopsOnFatal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "m", "k", WithRetryConfig(fastRetry()), WithLogger(quiet))
	_, err := c.Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "m", "k", WithRetryConfig(fastRetry()), WithLogger(quiet))
	_, err := c.Generate(context.Background(), "s", "u")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestGenerateWithoutKey(t *testing.T) {
	c := NewOpenAIClient("", "m", "")
	assert.False(t, c.Configured())
	_, err := c.Generate(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestPromptLibrary(t *testing.T) {
	for _, name := range []string{
		PromptFrictionAnalysis, PromptSurveyAnalysis, PromptComplianceBrief,
		PromptLDPProtocol, PromptStatusAnchorDialogue, PromptChangeBrief,
	} {
		_, ok := Lookup(name)
		assert.True(t, ok, name)
	}
	assert.Len(t, Names(), 6)
}

func TestPromptRender(t *testing.T) {
	p, _ := Lookup(PromptFrictionAnalysis)
	out, err := p.Render(map[string]any{"notes": []string{"VPN drops", "Too many logins"}})
	require.NoError(t, err)
	assert.Contains(t, out, "- VPN drops\n- Too many logins")

	_, err = p.Render(map[string]any{})
	assert.ErrorContains(t, err, "notes")
}

type stubGen struct {
	text string
	err  error
	user string
}

func (s *stubGen) Generate(_ context.Context, _, user string) (string, error) {
	s.user = user
	return s.text, s.err
}

func TestDraftSuccess(t *testing.T) {
	gen := &stubGen{text: "# Report"}
	d := NewDrafter(gen, "", quiet)
	out := d.Draft(context.Background(), PromptSurveyAnalysis, map[string]any{"comments": []string{"great"}})
	assert.False(t, out.Failed)
	assert.Equal(t, "# Report", out.Text)
	assert.Equal(t, "Sentiment & Thematic Analysis", out.Title)
	assert.Contains(t, gen.user, "- great")
}

func TestDraftMissingKeyIsFailSoft(t *testing.T) {
	d := NewDrafter(NewOpenAIClient("", "m", ""), "", quiet)
	out := d.Draft(context.Background(), PromptFrictionAnalysis, map[string]any{"notes": []string{"x"}})
	assert.True(t, out.Failed)
	assert.Equal(t, MsgMissingKey, out.Text)

	out = NewDrafter(nil, "", quiet).Draft(context.Background(), PromptFrictionAnalysis, nil)
	assert.Equal(t, MsgMissingKey, out.Text)
}

func TestDraftProviderErrorIsFailSoft(t *testing.T) {
	d := NewDrafter(&stubGen{err: errors.New("boom")}, "", quiet)
	out := d.Draft(context.Background(), PromptChangeBrief, map[string]any{
		"project_name": "P", "tier": "Light Support", "impact_score": 3,
	})
	assert.True(t, out.Failed)
	assert.Equal(t, "An error occurred during AI analysis: boom", out.Text)
}

func TestDraftUnknownPrompt(t *testing.T) {
	out := NewDrafter(&stubGen{}, "", quiet).Draft(context.Background(), "nope", nil)
	assert.True(t, out.Failed)
	assert.True(t, strings.HasPrefix(out.Text, "An error occurred during AI analysis:"))
}
