package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultBranch is used by RawURL when no branch is given
const DefaultBranch = "main"

// maxDocumentSize caps how much of a remote document is read
const maxDocumentSize = 16 << 20

// ErrS3Disabled is returned for s3:// locations when no endpoint is configured
var ErrS3Disabled = errors.New("s3 source not configured")

// Options configure a Fetcher
type Options struct {
	Timeout time.Duration
	// S3 settings; an empty endpoint disables s3:// locations
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
}

// Fetcher reads markdown documents from local files, HTTP(S) URLs and S3 buckets
type Fetcher struct {
	timeout time.Duration
	client  *http.Client
	s3      *minio.Client
}

// New creates a Fetcher
func New(opts Options) (*Fetcher, error) {
	f := &Fetcher{
		timeout: opts.Timeout,
		client:  &http.Client{},
	}
	if opts.S3Endpoint != "" {
		mc, err := minio.New(opts.S3Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(opts.S3AccessKey, opts.S3SecretKey, ""),
			Secure: opts.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		f.s3 = mc
	}
	return f, nil
}

// RawURL turns a GitHub repository URL into the raw URL of one file on a branch:
// https://github.com/org/repo becomes https://raw.githubusercontent.com/org/repo/<branch>/<file>.
func RawURL(repoURL, branch, file string) (string, error) {
	if branch == "" {
		branch = DefaultBranch
	}
	u, err := url.Parse(strings.TrimSpace(repoURL))
	if err != nil {
		return "", fmt.Errorf("invalid repository url %q: %w", repoURL, err)
	}
	if u.Host != "github.com" && u.Host != "www.github.com" {
		return "", fmt.Errorf("invalid repository url %q: host must be github.com", repoURL)
	}
	repo := strings.Trim(strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), ".git"), "/")
	if strings.Count(repo, "/") != 1 {
		return "", fmt.Errorf("invalid repository url %q: expected github.com/<owner>/<repo>", repoURL)
	}
	file = strings.TrimLeft(file, "/")
	if file == "" {
		return "", fmt.Errorf("file name is required")
	}
	return "https://raw.githubusercontent.com/" + repo + "/" + branch + "/" + file, nil
}

// Fetch returns the document at location: an http(s) URL, an s3://bucket/key
// object or a local file path.
func (f *Fetcher) Fetch(ctx context.Context, location string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return f.fetchHTTP(ctx, location)
	case strings.HasPrefix(location, "s3://"):
		return f.fetchS3(ctx, location)
	default:
		b, err := os.ReadFile(location)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", location, err)
		}
		return string(b), nil
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, location string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", location, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: unexpected status %s", location, resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", location, err)
	}
	return string(b), nil
}

func (f *Fetcher) fetchS3(ctx context.Context, location string) (string, error) {
	bucket, key, err := splitS3(location)
	if err != nil {
		return "", err
	}
	if f.s3 == nil {
		return "", ErrS3Disabled
	}
	obj, err := f.s3.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", location, err)
	}
	defer obj.Close()

	b, err := io.ReadAll(io.LimitReader(obj, maxDocumentSize))
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", location, err)
	}
	return string(b), nil
}

// splitS3 splits s3://bucket/key into its parts
func splitS3(location string) (string, string, error) {
	rest := strings.TrimPrefix(location, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 location %q: expected s3://<bucket>/<key>", location)
	}
	return bucket, key, nil
}
