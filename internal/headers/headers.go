// Package headers proposes section headers for a document by asking a
// language model, so documents can be outlined without a hand-written
// header list.
package headers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docoutline/internal/chunker"
	"github.com/dgallion1/docoutline/internal/document"
)

// ErrNoHeaders is returned when discovery finds no usable header.
var ErrNoHeaders = errors.New("no headers were identified")

// Request is one completion call.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Provider sends a prompt to a language model and returns its text reply.
// Transient failures (rate limits, 5xx) are reported as *RetryableError.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// Config controls a Discoverer.
type Config struct {
	Chunk         chunker.Config
	MaxConcurrent int       // Windows in flight at once.
	Stats         *LLMStats // Optional latency recorder.
}

// Discoverer runs header discovery over a document.
type Discoverer struct {
	provider Provider
	cfg      Config
	log      *slog.Logger
}

func NewDiscoverer(p Provider, cfg Config, log *slog.Logger) *Discoverer {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 2
	}
	if log == nil {
		log = slog.Default()
	}
	return &Discoverer{provider: p, cfg: cfg, log: log}
}

// Provider returns the configured provider name.
func (d *Discoverer) Provider() string {
	return d.provider.Name()
}

// Discover returns the headers found in doc in document order, without
// duplicates. Long documents are split into windows that are sent
// concurrently; any failed window fails the whole call.
func (d *Discoverer) Discover(ctx context.Context, doc *document.Document) ([]string, error) {
	windows := chunker.Windows(doc, d.cfg.Chunk)
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: document has no text", ErrNoHeaders)
	}

	found := make([][]string, len(windows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.MaxConcurrent)
	for i, w := range windows {
		g.Go(func() error {
			hs, err := d.discoverWindow(gctx, doc.Title, w, len(windows))
			if err != nil {
				return fmt.Errorf("window %d: %w", w.Index, err)
			}
			found[i] = hs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []string
	for _, hs := range found {
		all = append(all, hs...)
	}
	headers := CleanHeaders(all)
	if len(headers) == 0 {
		return nil, ErrNoHeaders
	}
	d.log.Info("headers discovered", "provider", d.provider.Name(), "windows", len(windows), "headers", len(headers))
	return headers, nil
}

func (d *Discoverer) discoverWindow(ctx context.Context, title string, w chunker.Window, total int) ([]string, error) {
	req := Request{
		System:      SystemPrompt,
		Prompt:      BuildPrompt(title, w, total),
		MaxTokens:   1024,
		Temperature: 0.3,
	}

	start := time.Now()
	raw, err := d.provider.Complete(ctx, req)
	if d.cfg.Stats != nil {
		d.cfg.Stats.Record(time.Since(start).Milliseconds(), err == nil)
	}
	if err != nil {
		return nil, err
	}
	d.log.Debug("discovery response", "window", w.Index, "raw", truncate(raw, 500))

	hs, err := ParseHeaders(raw)
	if err != nil {
		return nil, err
	}
	return hs, nil
}

// Ping sends a trivial prompt through the provider and returns the reply.
func (d *Discoverer) Ping(ctx context.Context) (string, error) {
	start := time.Now()
	out, err := d.provider.Complete(ctx, Request{Prompt: "Say hello", MaxTokens: 16})
	if d.cfg.Stats != nil {
		d.cfg.Stats.Record(time.Since(start).Milliseconds(), err == nil)
	}
	if err != nil {
		return "", fmt.Errorf("%s ping: %w", d.provider.Name(), err)
	}
	return strings.TrimSpace(out), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
