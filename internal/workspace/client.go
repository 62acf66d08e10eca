// Package workspace is the adapter boundary to the remote content
// workspace. It maps transport-level failures onto the two errors the
// rest of the system understands and never lets a call hang without a
// deadline.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hferrand/inkstream/internal/logger"
	"github.com/hferrand/inkstream/internal/models"
	"github.com/hferrand/inkstream/internal/utils"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 16 << 20
)

// Client is the capability the ingestion layer depends on.
type Client interface {
	// FetchRecords returns the raw record set for a workspace URL.
	FetchRecords(ctx context.Context, workspaceURL string) ([]models.RawRecord, error)
	// FetchBlockTree returns the block tree for one identifier. This
	// path is independent of the content cache.
	FetchBlockTree(ctx context.Context, id string) (models.RawBlockTree, error)
}

// HTTPWorkspace talks to the workspace export API over HTTP.
type HTTPWorkspace struct {
	client  HTTPClient
	baseURL string
	timeout time.Duration
}

func New(client HTTPClient, baseURL string, timeout time.Duration) *HTTPWorkspace {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if client == nil {
		client = NewHTTPClient(timeout)
	}
	return &HTTPWorkspace{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

type recordsEnvelope struct {
	Records []models.RawRecord `json:"records"`
}

func (w *HTTPWorkspace) FetchRecords(ctx context.Context, workspaceURL string) ([]models.RawRecord, error) {
	data, err := w.getJSON(ctx, workspaceURL)
	if err != nil {
		return nil, err
	}

	var env recordsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: decoding records: %v", ErrRemoteUnavailable, err)
	}
	return env.Records, nil
}

func (w *HTTPWorkspace) FetchBlockTree(ctx context.Context, id string) (models.RawBlockTree, error) {
	blockURL := w.baseURL + "/blocks/" + url.PathEscape(id)
	data, err := w.getJSON(ctx, blockURL)
	if err != nil {
		return models.RawBlockTree{}, err
	}

	var tree models.RawBlockTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return models.RawBlockTree{}, fmt.Errorf("%w: decoding block tree %s: %v", ErrRemoteUnavailable, id, err)
	}
	if tree.ID == "" {
		tree.ID = id
	}
	return tree, nil
}

// getJSON performs a bounded GET and maps the response onto the error
// taxonomy.
func (w *HTTPWorkspace) getJSON(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", ErrNotFound, rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Debug("workspace call timed out after %s: %s", w.timeout, parsed.Host)
		}
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer utils.Try(resp.Body.Close)

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("%w: reading body: %v", ErrRemoteUnavailable, err)
		}
		return data, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, parsed.Path)
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrRemoteUnavailable, resp.StatusCode)
	}
}
