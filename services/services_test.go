package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/config"
	"wardrobeapi/models"
	"wardrobeapi/stylist"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewCacheSessionStore(time.Hour)
	require.NoError(t, err)

	session, err := store.Create(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(42), got.UserID)

	require.NoError(t, store.Expire(ctx, session.ID))
	_, err = store.Get(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

const weatherPayload = `{
  "location": {"name": "London"},
  "current": {"temp_c": 11.0, "feelslike_c": 9.5, "humidity": 82, "wind_kph": 19.1, "uv": 2, "condition": {"text": "Light rain"}},
  "forecast": {"forecastday": [{"day": {"maxtemp_c": 14.2, "mintemp_c": 6.1}}]}
}`

func TestWeatherServiceParsesForecast(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "london", r.URL.Query().Get("q"))
		w.Write([]byte(weatherPayload))
	}))
	defer server.Close()

	svc, err := NewWeatherService(server.URL, "secret", "London")
	require.NoError(t, err)

	w, err := svc.Current(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 11.0, w.Temperature)
	assert.Equal(t, 9.5, w.FeelsLike)
	assert.Equal(t, "Light rain", w.Description)
	assert.Equal(t, 14.2, w.ForecastHigh)
	assert.Equal(t, 6.1, w.ForecastLow)
	assert.True(t, w.Rainy())
	assert.Equal(t, int32(1), calls.Load())
}

func TestWeatherServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc, err := NewWeatherService(server.URL, "secret", "London")
	require.NoError(t, err)
	_, err = svc.Current(context.Background(), "Paris")
	assert.ErrorIs(t, err, ErrWeatherUnavailable)

	unconfigured, err := NewWeatherService("", "", "London")
	require.NoError(t, err)
	_, err = unconfigured.Current(context.Background(), "Paris")
	assert.ErrorIs(t, err, ErrWeatherUnavailable)
}

type flakyCompleter struct {
	failures int
	calls    int
	err      error
}

func (f *flakyCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.err
	}
	return "ok", nil
}

func TestRetryingCompleter(t *testing.T) {
	flaky := &flakyCompleter{failures: 2, err: errors.New("503")}
	r := &RetryingCompleter{Next: flaky, Attempts: 3, Backoff: time.Millisecond}
	text, err := r.Complete(context.Background(), "p", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 3, flaky.calls)

	down := &flakyCompleter{failures: 10, err: errors.New("503")}
	r = &RetryingCompleter{Next: down, Attempts: 3, Backoff: time.Millisecond}
	_, err = r.Complete(context.Background(), "p", 0.5)
	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Equal(t, 3, down.calls)

	blocked := &flakyCompleter{failures: 10, err: fmt.Errorf("%w: SAFETY", ErrContentViolation)}
	r = &RetryingCompleter{Next: blocked, Attempts: 3, Backoff: time.Millisecond}
	_, err = r.Complete(context.Background(), "p", 0.5)
	assert.ErrorIs(t, err, ErrContentViolation)
	assert.Equal(t, 1, blocked.calls)

	timedOut := &flakyCompleter{failures: 10, err: context.DeadlineExceeded}
	r = &RetryingCompleter{Next: timedOut, Attempts: 3, Backoff: time.Millisecond}
	_, err = r.Complete(context.Background(), "p", 0.5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, timedOut.calls)
}

func TestParseLLMModelName(t *testing.T) {
	assert.Equal(t, Pro25, ParseLLMModelName("gemini-2.5-pro"))
	assert.Equal(t, Flash25, ParseLLMModelName("unknown"))
}

func TestNormalizeIllustration(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 300; x++ {
			img.Set(x, y, color.RGBA{R: 250, G: 250, B: 248, A: 255})
		}
	}
	img.Set(150, 100, color.RGBA{R: 20, G: 40, B: 120, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	out, err := NormalizeIllustration(buf.Bytes())
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, IllustrationSize, decoded.Bounds().Dx())
	assert.Equal(t, IllustrationSize, decoded.Bounds().Dy())
	r, g, b, _ := decoded.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r&g&b)
}

func TestWhitenBackgroundRejectsBadThresholds(t *testing.T) {
	_, err := WhitenBackgroundFeathered(nil, 200, 100, 0.5)
	assert.Error(t, err)
	_, err = WhitenBackgroundFeathered(nil, 100, 200, 1.5)
	assert.Error(t, err)
}

func TestIllustrationPrompt(t *testing.T) {
	prompt := IllustrationPrompt(models.WardrobeItem{Color: "Navy", Material: "Wool", SubType: "Blazer"})
	assert.Contains(t, prompt, "navy wool blazer with a solid pattern")
	assert.Contains(t, prompt, "pure white background")
}

func TestNewCompleterRequiresKeys(t *testing.T) {
	_, err := NewCompleter(context.Background(), config.StylistConfig{LLMProvider: "openai"})
	assert.ErrorContains(t, err, "OPENAI_API_KEY")

	_, err = NewCompleter(context.Background(), config.StylistConfig{LLMProvider: "gemini"})
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	_, err = NewCompleter(context.Background(), config.StylistConfig{LLMProvider: "llama"})
	assert.ErrorContains(t, err, "unknown LLM provider")

	cfg := config.StylistConfig{LLMProvider: "OpenAI", OpenAIAPIKey: "sk-test", OpenAIModel: "gpt-4o-mini", LLMAttempts: 2}
	r, err := NewCompleter(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Attempts)
	assert.IsType(t, &OpenAICompleter{}, r.Next)

	backend, err := NewCompletionBackend(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &OpenAICompleter{}, backend)
}

func TestCompletionBackendCallsUpstreamOncePerStep(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	}))
	defer server.Close()

	backend, err := NewCompletionBackend(context.Background(), config.StylistConfig{
		LLMProvider:   "openai",
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: server.URL + "/",
		OpenAIModel:   "gpt-4o-mini",
		LLMAttempts:   2,
	})
	require.NoError(t, err)
	st := stylist.New(backend, nil, stylist.DefaultConfig())

	_, err = st.GenerateOutfit(context.Background(), stylist.Request{
		Message:  "dinner with friends",
		Wardrobe: []stylist.WardrobeItem{{ID: "1", ItemType: stylist.Top}},
	})

	assert.ErrorIs(t, err, stylist.ErrCompletionUnavailable)
	// classification and generation, nothing retried
	assert.Equal(t, int32(2), hits.Load())
}
