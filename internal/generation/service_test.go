package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

type fakeGenerator struct {
	text   string
	err    error
	block  bool
	closed bool
	prompt string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func (f *fakeGenerator) Close() error {
	f.closed = true
	return nil
}

type factoryRecorder struct {
	calls int
	keys  []string
	gen   *fakeGenerator
}

func (r *factoryRecorder) factory(_ context.Context, apiKey string) (Generator, error) {
	r.calls++
	r.keys = append(r.keys, apiKey)
	return r.gen, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerate_MissingOrPlaceholderKeyNeverCallsUpstream(t *testing.T) {
	for _, key := range []string{"", "   ", PlaceholderAPIKey} {
		rec := &factoryRecorder{gen: &fakeGenerator{text: "<p>x</p>"}}
		svc := NewService(func() string { return key }, rec.factory, time.Second, quietLogger())

		_, err := svc.Generate(context.Background(), "prompt")
		require.Error(t, err)
		assert.Equal(t, KindConfiguration, KindOf(err), "key=%q", key)
		assert.Zero(t, rec.calls, "key=%q", key)
		assert.False(t, svc.Configured())
	}
}

func TestGenerate_KeyReadOnEveryCall(t *testing.T) {
	key := ""
	rec := &factoryRecorder{gen: &fakeGenerator{text: "<p>ok</p>"}}
	svc := NewService(func() string { return key }, rec.factory, time.Second, quietLogger())

	_, err := svc.Generate(context.Background(), "prompt")
	assert.Equal(t, KindConfiguration, KindOf(err))

	key = "real-key"
	out, err := svc.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", out)
	assert.Equal(t, []string{"real-key"}, rec.keys)

	key = PlaceholderAPIKey
	_, err = svc.Generate(context.Background(), "prompt")
	assert.Equal(t, KindConfiguration, KindOf(err))
	assert.Equal(t, 1, rec.calls)
}

func TestGenerate_SuccessClosesClientAndNormalizes(t *testing.T) {
	gen := &fakeGenerator{text: "```html\n<h1>Jane</h1>\n```"}
	rec := &factoryRecorder{gen: gen}
	svc := NewService(func() string { return "k" }, rec.factory, time.Second, quietLogger())

	out, err := svc.Generate(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Jane</h1>", out)
	assert.Equal(t, "the prompt", gen.prompt)
	assert.True(t, gen.closed)
}

func TestGenerate_SingleAttemptOnFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("googleapi: Error 500: internal")}
	rec := &factoryRecorder{gen: gen}
	svc := NewService(func() string { return "k" }, rec.factory, time.Second, quietLogger())

	_, err := svc.Generate(context.Background(), "p")
	require.Error(t, err)

	var genErr *Error
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, KindUpstream, genErr.Kind)
	assert.Equal(t, "googleapi: Error 500: internal", genErr.Details)
	assert.Equal(t, 1, rec.calls)
	assert.True(t, gen.closed)
}

func TestGenerate_Timeout(t *testing.T) {
	rec := &factoryRecorder{gen: &fakeGenerator{block: true}}
	svc := NewService(func() string { return "k" }, rec.factory, 20*time.Millisecond, quietLogger())

	_, err := svc.Generate(context.Background(), "p")
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestGenerate_FactoryError(t *testing.T) {
	svc := NewService(func() string { return "k" }, func(context.Context, string) (Generator, error) {
		return nil, errors.New("dial failed")
	}, time.Second, quietLogger())

	_, err := svc.Generate(context.Background(), "p")
	assert.Equal(t, KindUpstream, KindOf(err))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"api key message", errors.New("API key not valid. Please pass a valid API key."), KindAuthentication},
		{"quota message", errors.New("You exceeded your current quota"), KindCapacity},
		{"resource exhausted", errors.New("rpc error: code = ResourceExhausted desc = RESOURCE_EXHAUSTED"), KindCapacity},
		{"model message", errors.New("model gemini-x is not found"), KindModel},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), KindTimeout},
		{"googleapi 403", &googleapi.Error{Code: http.StatusForbidden, Message: "denied"}, KindAuthentication},
		{"googleapi 429", &googleapi.Error{Code: http.StatusTooManyRequests, Message: "slow down"}, KindCapacity},
		{"generic", errors.New("connection reset by peer"), KindUpstream},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestNormalizeContent(t *testing.T) {
	assert.Equal(t, "<p>plain</p>", NormalizeContent("  <p>plain</p>\n"))
	assert.Equal(t, "<p>fenced</p>", NormalizeContent("```html\n<p>fenced</p>\n```"))
	assert.Equal(t, "<p>bare fence</p>", NormalizeContent("```\n<p>bare fence</p>\n```"))

	doc := "<!DOCTYPE html><html><head><title>x</title></head><body><h1>Jane</h1><p>Go</p></body></html>"
	assert.Equal(t, "<h1>Jane</h1><p>Go</p>", NormalizeContent(doc))
}

func TestNormalizeContent_KeepsHeadStyles(t *testing.T) {
	doc := "```html\n<!DOCTYPE html><html><head><title>CV</title>" +
		"<style>h1 { color: #2c3e50; }</style><style>.skills li { float: left; }</style>" +
		"</head><body><h1>Jane</h1></body></html>\n```"

	out := NormalizeContent(doc)
	assert.Equal(t, "<style>h1 { color: #2c3e50; }</style>\n<style>.skills li { float: left; }</style>\n<h1>Jane</h1>", out)
	assert.NotContains(t, out, "<title>")
}
