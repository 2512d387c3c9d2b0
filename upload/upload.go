// Package upload publishes image files to public hosts. A Chain tries an
// ordered list of providers and returns the first URL one of them hands back.
package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// ErrNoProvider is returned when every provider failed and the data URI
// fallback is disabled.
var ErrNoProvider = errors.New("upload: no provider accepted the file")

// DataURIProvider is the Result.Provider value for the inline fallback.
const DataURIProvider = "data-uri"

// File is the payload handed to every provider.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Provider uploads a file and returns its public URL. A provider makes a
// single attempt; the Chain decides what happens on failure.
type Provider interface {
	Name() string
	Upload(ctx context.Context, f File) (string, error)
}

// Result is the outcome of Chain.Upload.
type Result struct {
	URL      string
	Provider string
}

// Chain tries providers in order and stops at the first success.
type Chain struct {
	providers []Provider
	logger    echo.Logger
	dataURI   bool
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithLogger sets the logger provider failures are reported to.
func WithLogger(l echo.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = l
	}
}

// WithDataURIFallback controls whether a file no provider accepted is
// returned inline as a data URI (the default) or as ErrNoProvider.
func WithDataURIFallback(enabled bool) ChainOption {
	return func(c *Chain) {
		c.dataURI = enabled
	}
}

// NewChain returns a Chain over providers, tried in the given order.
func NewChain(providers []Provider, opts ...ChainOption) *Chain {
	c := &Chain{
		providers: providers,
		logger:    log.New("upload"),
		dataURI:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Providers returns the provider names in the order they are tried.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Upload tries each provider once, in order. Providers after the first
// success are never called.
func (c *Chain) Upload(ctx context.Context, f File) (Result, error) {
	var errs []error
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		url, err := p.Upload(ctx, f)
		if err == nil {
			c.logger.Infof("uploaded %s (%d bytes) to %s", f.Name, len(f.Data), p.Name())
			return Result{URL: url, Provider: p.Name()}, nil
		}
		c.logger.Warnf("upload to %s failed, trying next: %v", p.Name(), err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	if !c.dataURI {
		return Result{}, errors.Join(append([]error{ErrNoProvider}, errs...)...)
	}
	c.logger.Warnf("no provider accepted %s, embedding it as a data URI", f.Name)
	return Result{URL: DataURI(f), Provider: DataURIProvider}, nil
}

// DataURI encodes f inline. Works for local viewing, but the URL is as large
// as the file itself.
func DataURI(f File) string {
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}
