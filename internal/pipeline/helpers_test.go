package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/dgallion1/docoutline/internal/chunker"
	"github.com/dgallion1/docoutline/internal/headers"
	"github.com/dgallion1/docoutline/internal/store"
)

const sampleMarkdown = `Introduction

**Alpha** is first.

Second point about **Beta**.

Scope

a. Item with **Gamma**
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedProvider returns the queued replies in order, then repeats the
// last one.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []reply
	calls   int
}

type reply struct {
	text string
	err  error
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, _ headers.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := p.replies[min(p.calls, len(p.replies)-1)]
	p.calls++
	return r.text, r.err
}

func (p *scriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func newDiscoverer(p headers.Provider) *headers.Discoverer {
	return headers.NewDiscoverer(p, headers.Config{Chunk: chunker.DefaultConfig()}, quietLogger())
}

// failingStore wraps Memory and fails every Put.
type failingStore struct {
	*store.Memory
}

func (failingStore) Put(context.Context, *store.Result) error {
	return errors.New("backend unavailable")
}
