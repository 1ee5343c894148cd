package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// DefaultPublicDomain is the AWS virtual-hosted S3 domain.
const DefaultPublicDomain = "s3.amazonaws.com"

// ObjectStore persists image bytes and reports where they can be fetched.
type ObjectStore interface {
	// Put stores body under key, replacing any existing object with the
	// same key, and returns the object's public URL.
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// PublicURL builds https://{bucket}.{domain}/{key}. The object store is
// never queried for the URL. Path segments of key are escaped.
func PublicURL(bucket, domain, key string) string {
	if domain == "" {
		domain = DefaultPublicDomain
	}

	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return fmt.Sprintf("https://%s.%s/%s", bucket, domain, strings.Join(segments, "/"))
}
