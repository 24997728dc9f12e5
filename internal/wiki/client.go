package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Katya0208/wikicorpus/internal/metrics"
)

// Config captures the client settings.
type Config struct {
	// Endpoint is the query API URL, e.g. https://en.wikipedia.org/w/api.php.
	Endpoint string
	// UserAgent identifies this client to the remote API.
	UserAgent string
	// Timeout is the per-request budget. Defaults to 60s.
	Timeout time.Duration
	// BatchSize is the cmlimit per listing request. Defaults to 500.
	BatchSize int
}

// Client talks to a MediaWiki query endpoint. It performs no retries:
// transport failures surface as *TransportError and retry policy belongs to
// the caller.
type Client struct {
	httpClient *http.Client
	endpoint   string
	host       string
	userAgent  string
	batchSize  int
	logger     *zap.Logger
}

// New constructs a Client from cfg.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("api endpoint is required")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse api endpoint: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api endpoint %q has no host", cfg.Endpoint)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 500
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "wikicorpus/0.1"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   cfg.Endpoint,
		host:       u.Host,
		userAgent:  userAgent,
		batchSize:  batch,
		logger:     logger,
	}, nil
}

// Source returns the API host, recorded in manifest records.
func (c *Client) Source() string {
	return c.host
}

// PageURL returns the canonical article URL for a title.
func (c *Client) PageURL(title string) string {
	return fmt.Sprintf("https://%s/wiki/%s", c.host, strings.ReplaceAll(title, " ", "_"))
}

// CategoryMembers lists the members of a category of the given kind. The
// returned cursor fetches batches lazily as it is advanced. ctx is captured
// for the cursor's lifetime and governs every batch request it issues;
// canceling it fails the next Next call.
func (c *Client) CategoryMembers(ctx context.Context, category string, kind MemberKind) Cursor {
	return &memberCursor{
		ctx:      ctx,
		client:   c,
		category: category,
		kind:     kind,
	}
}

type memberListResponse struct {
	Continue struct {
		CmContinue string `json:"cmcontinue"`
	} `json:"continue"`
	Query struct {
		CategoryMembers []Member `json:"categorymembers"`
	} `json:"query"`
}

type memberCursor struct {
	// ctx lives as long as the cursor; Next has no context parameter, the
	// same way a database rows iterator scopes its query context.
	ctx      context.Context
	client   *Client
	category string
	kind     MemberKind

	buf       []Member
	cur       Member
	cont      string
	exhausted bool
	err       error
}

// Next implements Cursor.
func (mc *memberCursor) Next() bool {
	if mc.err != nil {
		return false
	}
	for len(mc.buf) == 0 {
		if mc.exhausted {
			return false
		}
		if err := mc.fetchBatch(); err != nil {
			mc.err = err
			return false
		}
	}
	mc.cur = mc.buf[0]
	mc.buf = mc.buf[1:]
	return true
}

// Member implements Cursor.
func (mc *memberCursor) Member() Member {
	return mc.cur
}

// Err implements Cursor.
func (mc *memberCursor) Err() error {
	return mc.err
}

func (mc *memberCursor) fetchBatch() error {
	params := url.Values{
		"action":  {"query"},
		"list":    {"categorymembers"},
		"cmtitle": {mc.category},
		"cmtype":  {string(mc.kind)},
		"cmlimit": {strconv.Itoa(mc.client.batchSize)},
		"format":  {"json"},
	}
	if mc.cont != "" {
		params.Set("cmcontinue", mc.cont)
	}

	var resp memberListResponse
	if err := mc.client.get(mc.ctx, "categorymembers", params, &resp); err != nil {
		return err
	}
	mc.buf = append(mc.buf, resp.Query.CategoryMembers...)
	mc.cont = resp.Continue.CmContinue
	// A response without a continuation token ends the sequence.
	if mc.cont == "" {
		mc.exhausted = true
	}
	return nil
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID  int64   `json:"pageid"`
			Title   string  `json:"title"`
			Extract string  `json:"extract"`
			Missing *string `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

// FetchExtract resolves redirects and returns the plaintext extract for a
// title. A nonexistent title yields Extract.Missing() == true, not an error.
func (c *Client) FetchExtract(ctx context.Context, title string) (Extract, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"explaintext": {"1"},
		"titles":      {title},
		"redirects":   {"1"},
		"format":      {"json"},
	}

	var resp extractResponse
	if err := c.get(ctx, "extract", params, &resp); err != nil {
		return Extract{}, err
	}

	for _, page := range resp.Query.Pages {
		if page.Missing != nil {
			return Extract{PageID: MissingPageID, Title: title}, nil
		}
		resolved := page.Title
		if resolved == "" {
			resolved = title
		}
		return Extract{PageID: page.PageID, Title: resolved, Text: page.Extract}, nil
	}
	return Extract{PageID: MissingPageID, Title: title}, nil
}

func (c *Client) get(ctx context.Context, operation string, params url.Values, out any) error {
	reqURL := c.endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		terr := &TransportError{URL: reqURL, Err: err}
		metrics.ObserveAPIRequest(operation, time.Since(start), terr)
		return terr
	}
	defer func() { _ = resp.Body.Close() }()

	// A non-2xx status is a transport failure too: it must land in the
	// error outcome, not just surface as an error to the caller.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		terr := &TransportError{URL: reqURL, StatusCode: resp.StatusCode}
		metrics.ObserveAPIRequest(operation, time.Since(start), terr)
		return terr
	}
	metrics.ObserveAPIRequest(operation, time.Since(start), nil)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	c.logger.Debug("api request",
		zap.String("operation", operation),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
