// Package gcs opens schema artifacts from Google Cloud Storage or the local
// filesystem.
package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"
)

// Scheme prefixes object store URIs.
const Scheme = "gs://"

// ParseURI splits gs://bucket/path/to/object.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, Scheme) {
		return "", "", fmt.Errorf("invalid GCS URI %q: must start with %s", uri, Scheme)
	}
	bucket, object, ok := strings.Cut(strings.TrimPrefix(uri, Scheme), "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid GCS URI %q: expected gs://bucket-name/path/to/object", uri)
	}
	return bucket, object, nil
}

// Opener resolves gs:// URIs through the Cloud Storage JSON API and anything
// else as a local path. The storage client is created on first use with
// application default credentials unless options are given.
type Opener struct {
	opts []option.ClientOption

	once sync.Once
	svc  *storage.Service
	err  error
}

// NewOpener creates an Opener. opts replace the default credentials lookup.
func NewOpener(opts ...option.ClientOption) *Opener {
	return &Opener{opts: opts}
}

func (o *Opener) service(ctx context.Context) (*storage.Service, error) {
	o.once.Do(func() {
		opts := o.opts
		if len(opts) == 0 {
			client, err := google.DefaultClient(ctx, storage.DevstorageReadOnlyScope)
			if err != nil {
				o.err = fmt.Errorf("default credentials: %w", err)
				return
			}
			opts = []option.ClientOption{option.WithHTTPClient(client)}
		}
		o.svc, o.err = storage.NewService(ctx, opts...)
	})
	return o.svc, o.err
}

// Open returns the content of uri. The caller closes it.
func (o *Opener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if !strings.HasPrefix(uri, Scheme) {
		return os.Open(uri)
	}
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	svc, err := o.service(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Objects.Get(bucket, object).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", uri, err)
	}
	return resp.Body, nil
}
