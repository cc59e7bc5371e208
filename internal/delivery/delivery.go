// Package delivery hands generated documents to the caller, either as a
// stored object with a download URL or inline in the response.
package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ugc-dashboard/reporting/internal/document"
	"github.com/ugc-dashboard/reporting/internal/metrics"
	"github.com/ugc-dashboard/reporting/internal/storage"
)

// Method describes how an artifact reached the caller
type Method string

const (
	MethodStorage Method = "storage"
	MethodInline  Method = "inline"
)

// ErrNoDeliverer is returned when a chain has no deliverers configured
var ErrNoDeliverer = errors.New("no deliverer configured")

// Result describes a completed delivery
type Result struct {
	Method   Method `json:"method"`
	Filename string `json:"filename"`
	MIMEType string `json:"mimeType"`
	Size     int    `json:"size"`
	URL      string `json:"url,omitempty"`
	Key      string `json:"key,omitempty"`

	// Data is set only for inline delivery
	Data []byte `json:"-"`
}

// Deliverer delivers a single artifact
type Deliverer interface {
	Deliver(ctx context.Context, a *document.Artifact) (*Result, error)
}

// Uploader is the storage subset used by StorageDeliverer
type Uploader interface {
	Upload(ctx context.Context, in storage.UploadInput) (*storage.UploadOutput, error)
}

// StorageDeliverer uploads artifacts to object storage
type StorageDeliverer struct {
	uploader Uploader
}

func NewStorageDeliverer(uploader Uploader) *StorageDeliverer {
	return &StorageDeliverer{uploader: uploader}
}

func (d *StorageDeliverer) Deliver(ctx context.Context, a *document.Artifact) (*Result, error) {
	out, err := d.uploader.Upload(ctx, storage.UploadInput{
		Reader:      bytes.NewReader(a.Data),
		ContentType: a.MIMEType,
		Size:        int64(len(a.Data)),
		Filename:    a.Filename,
	})
	if err != nil {
		return nil, fmt.Errorf("storing %s: %w", a.Filename, err)
	}

	return &Result{
		Method:   MethodStorage,
		Filename: a.Filename,
		MIMEType: a.MIMEType,
		Size:     len(a.Data),
		URL:      out.URL,
		Key:      out.Key,
	}, nil
}

// InlineDeliverer returns the artifact bytes to the caller. It never fails.
type InlineDeliverer struct{}

func (InlineDeliverer) Deliver(_ context.Context, a *document.Artifact) (*Result, error) {
	return &Result{
		Method:   MethodInline,
		Filename: a.Filename,
		MIMEType: a.MIMEType,
		Size:     len(a.Data),
		Data:     a.Data,
	}, nil
}

type namedDeliverer struct {
	name string
	d    Deliverer
}

// Chain tries deliverers in order and returns the first success
type Chain struct {
	deliverers []namedDeliverer
	logger     zerolog.Logger
}

// ChainOption configures a Chain
type ChainOption func(*Chain)

// WithLogger sets the logger used for failed attempts
func WithLogger(l zerolog.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = l
	}
}

// Then appends a deliverer to the chain
func Then(name string, d Deliverer) ChainOption {
	return func(c *Chain) {
		c.deliverers = append(c.deliverers, namedDeliverer{name: name, d: d})
	}
}

func NewChain(opts ...ChainOption) *Chain {
	c := &Chain{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deliver runs the chain. The error of the last deliverer is returned when all fail.
func (c *Chain) Deliver(ctx context.Context, a *document.Artifact) (*Result, error) {
	if len(c.deliverers) == 0 {
		return nil, ErrNoDeliverer
	}

	var lastErr error
	for _, nd := range c.deliverers {
		res, err := nd.d.Deliver(ctx, a)
		if err == nil {
			metrics.DeliveryAttempts.WithLabelValues(nd.name, "success").Inc()
			return res, nil
		}

		metrics.DeliveryAttempts.WithLabelValues(nd.name, "failure").Inc()
		c.logger.Warn().Err(err).
			Str("deliverer", nd.name).
			Str("filename", a.Filename).
			Msg("delivery attempt failed")
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("delivering %s: %w", a.Filename, lastErr)
}
