package headers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docoutline/internal/chunker"
	"github.com/dgallion1/docoutline/internal/document"
)

// fakeProvider answers each prompt by listing the lines that start with
// "HEADER", mimicking a model that found them.
type fakeProvider struct {
	mu      sync.Mutex
	prompts []string
	err     error
	reply   func(prompt string) string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if f.reply != nil {
		return f.reply(req.Prompt), nil
	}
	var found []string
	for _, line := range strings.Split(req.Prompt, "\n") {
		if strings.HasPrefix(line, "HEADER") {
			found = append(found, fmt.Sprintf("%q", line))
		}
	}
	return "```json\n[" + strings.Join(found, ", ") + "]\n```", nil
}

func docWith(lines ...string) *document.Document {
	doc := &document.Document{Title: "Test"}
	for _, l := range lines {
		doc.Paragraphs = append(doc.Paragraphs, document.Plain(l))
	}
	return doc
}

func TestDiscover_SingleWindow(t *testing.T) {
	p := &fakeProvider{}
	stats := NewLLMStats(time.Hour)
	d := NewDiscoverer(p, Config{Chunk: chunker.DefaultConfig(), Stats: stats}, nil)

	got, err := d.Discover(context.Background(), docWith("HEADER one", "body", "HEADER two", "HEADER one"))
	require.NoError(t, err)
	assert.Equal(t, []string{"HEADER one", "HEADER two"}, got)
	require.Len(t, p.prompts, 1)
	assert.Contains(t, p.prompts[0], `Document: "Test"`)
	assert.Equal(t, 1, stats.Snapshot().Count)
}

func TestDiscover_WindowsMergeInOrder(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		if i%10 == 0 {
			lines = append(lines, fmt.Sprintf("HEADER %d", i))
		}
		lines = append(lines, strings.Repeat("filler ", 15))
	}
	p := &fakeProvider{}
	d := NewDiscoverer(p, Config{Chunk: chunker.Config{ChunkSize: 60, MinChunk: 1}, MaxConcurrent: 3}, nil)

	got, err := d.Discover(context.Background(), docWith(lines...))
	require.NoError(t, err)
	assert.Equal(t, []string{"HEADER 0", "HEADER 10", "HEADER 20", "HEADER 30"}, got)
	assert.Greater(t, len(p.prompts), 1)
}

func TestDiscover_NoHeaders(t *testing.T) {
	d := NewDiscoverer(&fakeProvider{}, Config{}, nil)

	_, err := d.Discover(context.Background(), docWith("just body"))
	assert.True(t, errors.Is(err, ErrNoHeaders))

	_, err = d.Discover(context.Background(), docWith("", " "))
	assert.True(t, errors.Is(err, ErrNoHeaders))
}

func TestDiscover_ProviderError(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	d := NewDiscoverer(&fakeProvider{err: &RetryableError{StatusCode: 503}}, Config{Stats: stats}, nil)

	_, err := d.Discover(context.Background(), docWith("HEADER a"))
	var retryErr *RetryableError
	require.True(t, errors.As(err, &retryErr))
	assert.Equal(t, 1, stats.Snapshot().Failures)
}

func TestDiscover_MalformedReply(t *testing.T) {
	p := &fakeProvider{reply: func(string) string { return "no idea" }}
	d := NewDiscoverer(p, Config{}, nil)

	_, err := d.Discover(context.Background(), docWith("HEADER a"))
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestPing(t *testing.T) {
	p := &fakeProvider{reply: func(string) string { return " hello \n" }}
	d := NewDiscoverer(p, Config{}, nil)

	out, err := d.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "fake", d.Provider())
}
