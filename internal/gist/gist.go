// Package gist talks to the remote document store: a GitHub Gist
// holding the whole calendar as a single JSON file. The core treats it
// as a lagging mirror — loads that fail mean "no data yet", saves that
// fail are logged and swallowed.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"gistcal/internal/model"
)

const (
	defaultBaseURL = "https://api.github.com"
	// DocumentFile is the name of the JSON file inside the gist.
	DocumentFile = "database.json"

	acceptHeader     = "application/vnd.github+json"
	apiVersionHeader = "2022-11-28"
)

// Client accesses one gist with one token.
type Client struct {
	// BaseURL may be overridden for tests; defaults to the public
	// GitHub API.
	BaseURL string

	token  string
	gistID string
	hc     *http.Client
	log    zerolog.Logger
}

// New returns a client for the given credentials. Either value may be
// empty; an unconfigured client loads nothing and saves nowhere.
func New(token, gistID string, log zerolog.Logger) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		token:   token,
		gistID:  gistID,
		hc:      &http.Client{Timeout: 15 * time.Second},
		log:     log.With().Str("component", "gist").Logger(),
	}
}

// Configured reports whether both a token and a gist id are present.
func (c *Client) Configured() bool { return c.token != "" && c.gistID != "" }

// gistResponse is the slice of the GitHub response we care about.
type gistResponse struct {
	Files map[string]struct {
		Content string `json:"content"`
	} `json:"files"`
}

// Load fetches and decodes the document. It returns (nil, nil) when the
// client is unconfigured, the gist does not exist, or the gist has no
// document file yet; all mean "no data yet", not failure. Errors are
// reserved for transport and auth. Unparsable file content degrades to
// an empty document rather than an error, so a corrupted remote never
// locks the user out.
func (c *Client) Load(ctx context.Context) (*model.Document, error) {
	if !c.Configured() {
		return nil, nil
	}

	body, status, err := c.request(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		c.log.Info().Str("gist", c.gistID).Msg("gist not found, starting empty")
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("gist load: unexpected status %d", status)
	}

	var resp gistResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("gist load: decoding response: %w", err)
	}
	file, ok := resp.Files[DocumentFile]
	if !ok {
		c.log.Info().Str("file", DocumentFile).Msg("gist has no document file yet")
		return nil, nil
	}

	var doc model.Document
	if err := json.Unmarshal([]byte(file.Content), &doc); err != nil {
		c.log.Error().Err(err).Msg("document content unparsable, starting empty")
		doc = model.Document{}
	}
	doc.Normalize()
	return &doc, nil
}

// Save serializes the document and PATCHes it into the gist. The error
// is for logging only; callers never roll back local state on it.
func (c *Client) Save(ctx context.Context, doc model.Document) error {
	if !c.Configured() {
		return fmt.Errorf("gist save: client not configured")
	}

	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("gist save: encoding document: %w", err)
	}
	payload, err := json.Marshal(map[string]any{
		"files": map[string]any{
			DocumentFile: map[string]string{"content": string(content)},
		},
	})
	if err != nil {
		return err
	}

	_, status, err := c.request(ctx, http.MethodPatch, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return fmt.Errorf("gist save: unexpected status %d", status)
	}
	c.log.Debug().Int("bytes", len(content)).Msg("document saved")
	return nil
}

// Verify checks that the credentials reach the gist.
func (c *Client) Verify(ctx context.Context) error {
	if !c.Configured() {
		return fmt.Errorf("gist: token and gist id are required")
	}
	_, status, err := c.request(ctx, http.MethodGet, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("gist: credentials rejected (status %d)", status)
	}
	return nil
}

// request performs one API call against the gist. The token never
// appears in errors or logs.
func (c *Client) request(ctx context.Context, method string, body []byte) ([]byte, int, error) {
	url := c.BaseURL + "/gists/" + c.gistID

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-GitHub-Api-Version", apiVersionHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("gist %s %s: %w", method, c.gistID, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return b, resp.StatusCode, nil
}
