// Package http_extractor provides the HttpExtractor block, which downloads a
// file over HTTP with optional retries.
package http_extractor

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/vk/tabflow/internal/execution"
	"github.com/vk/tabflow/internal/iotype"
	"github.com/vk/tabflow/internal/meta"
	"github.com/vk/tabflow/internal/registry"
	"github.com/vk/tabflow/internal/valuetype"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client is used for every request. Defaults to a client with a 30s
	// timeout.
	Client *http.Client
}

var descriptor = &meta.BlockType{
	Name:   "HttpExtractor",
	Input:  iotype.Nothing,
	Output: iotype.File,
	Properties: meta.Properties{
		"url": {Type: valuetype.Of(valuetype.Text),
			Docs: meta.Docs{Description: "The URL to download."}},
		"retries": {Type: valuetype.Of(valuetype.Integer), Default: meta.Default(cty.Zero),
			Validate: nonNegative,
			Docs:     meta.Docs{Description: "How often a failed request is repeated."}},
		"retry_backoff_ms": {Type: valuetype.Of(valuetype.Integer), Default: meta.Default(cty.NumberIntVal(2000)),
			Validate: nonNegative,
			Docs:     meta.Docs{Description: "Delay before the first retry, in milliseconds."}},
		"retry_strategy": {Type: valuetype.Of(valuetype.Text), Default: meta.Default(cty.StringVal(Exponential)),
			Validate: validStrategy,
			Docs:     meta.Docs{Description: "How the delay grows between retries: exponential or linear."}},
		"follow_redirects": {Type: valuetype.Of(valuetype.Boolean), Default: meta.Default(cty.True),
			Docs: meta.Docs{Description: "Whether HTTP redirects are followed."}},
	},
	Docs: meta.Docs{
		Description: "Downloads a file from the web.",
		Examples: []meta.Example{{
			Code:        "block \"Cars\" {\n  type = \"HttpExtractor\"\n  url  = \"https://example.com/cars.csv\"\n}",
			Description: "Fetch a CSV file.",
		}},
	},
}

// Retry strategies.
const (
	Exponential = "exponential"
	Linear      = "linear"
)

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBlock(descriptor, func() registry.Executor {
		client := m.Client
		if client == nil {
			client = &http.Client{Timeout: 30 * time.Second}
		}
		return &extractor{client: client}
	})
}

type extractor struct {
	client *http.Client
}

func (*extractor) InputKind() iotype.Kind  { return iotype.Nothing }
func (*extractor) OutputKind() iotype.Kind { return iotype.File }

func (e *extractor) Execute(ec *execution.Context, _ iotype.Value) (iotype.Value, error) {
	url := ec.Text("url")
	retries := ec.Integer("retries")
	logger := ec.Logger()

	client := *e.client
	if !ec.Bool("follow_redirects") {
		client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}

	attempt := 0
	file, err := backoff.Retry(ec.Ctx(), func() (*iotype.FileValue, error) {
		attempt++
		logger.Debug("Requesting file.", "url", url, "attempt", attempt)
		return fetch(ec.Ctx(), &client, url)
	},
		backoff.WithBackOff(newBackOff(ec.Text("retry_strategy"), time.Duration(ec.Integer("retry_backoff_ms"))*time.Millisecond)),
		backoff.WithMaxTries(uint(retries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logger.Warn("Request failed, retrying.", "url", url, "error", err, "wait", wait)
		}),
	)
	if err != nil {
		return nil, ec.PropertyErrorf("url", "could not download %s after %d attempt(s): %v", url, attempt, err)
	}
	logger.Info("Downloaded file.", "url", url, "name", file.Name, "bytes", len(file.Content))
	return file, nil
}

func fetch(ctx context.Context, client *http.Client, url string) (*iotype.FileValue, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	file := iotype.NewFile(fileName(resp.Request.URL.Path), body)
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil {
			file.MimeType = mt
		}
	}
	return file, nil
}

func fileName(urlPath string) string {
	name := path.Base(urlPath)
	if name == "/" || name == "." {
		return "index"
	}
	return name
}

func newBackOff(strategy string, base time.Duration) backoff.BackOff {
	if strategy == Linear {
		return &linearBackOff{step: base}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = time.Hour
	b.Reset()
	return b
}

// linearBackOff waits step, 2*step, 3*step, ...
type linearBackOff struct {
	step time.Duration
	n    int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return time.Duration(b.n) * b.step
}

func (b *linearBackOff) Reset() { b.n = 0 }

func nonNegative(v cty.Value) error {
	if v.AsBigFloat().Sign() < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validStrategy(v cty.Value) error {
	switch v.AsString() {
	case Exponential, Linear:
		return nil
	}
	return fmt.Errorf("unknown retry strategy %q, expected %q or %q", v.AsString(), Exponential, Linear)
}
