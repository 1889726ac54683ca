// Package quickadd turns free text into an event by delegating to an
// external natural-language parsing service. Parsing is fallible and
// its failures carry human-readable messages; the caller leaves the
// input open for retry.
package quickadd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gistcal/internal/model"
	"gistcal/internal/tz"
)

// Parsed is the structured result extracted from free text.
type Parsed struct {
	Title     string  `json:"title"`
	Date      tz.Date `json:"date"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
}

// ErrIncomplete is returned when the service could not extract every
// required field.
var ErrIncomplete = errors.New("couldn't extract all required event details")

// Parser extracts event details from free text.
type Parser interface {
	Parse(ctx context.Context, text string) (Parsed, error)
}

// HTTPParser posts text to a configured parsing endpoint.
type HTTPParser struct {
	url   string
	token string
	hc    *http.Client
	log   zerolog.Logger
}

// NewHTTP returns a parser for the given endpoint. token is optional.
func NewHTTP(url, token string, log zerolog.Logger) *HTTPParser {
	return &HTTPParser{
		url:   url,
		token: token,
		hc:    &http.Client{Timeout: 30 * time.Second},
		log:   log.With().Str("component", "quickadd").Logger(),
	}
}

// errorResponse carries the service's message for a failed extraction.
type errorResponse struct {
	Error string `json:"error"`
}

// Parse sends the text and decodes the extraction. A non-2xx response
// with an error body surfaces that message verbatim.
func (p *HTTPParser) Parse(ctx context.Context, text string) (Parsed, error) {
	if p.url == "" {
		return Parsed{}, errors.New("quick add is not configured (no parser URL)")
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Parsed{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return Parsed{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.hc.Do(req)
	if err != nil {
		return Parsed{}, fmt.Errorf("parse request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Parsed{}, err
	}

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if json.Unmarshal(body, &er) == nil && er.Error != "" {
			return Parsed{}, errors.New(er.Error)
		}
		return Parsed{}, fmt.Errorf("parse service returned status %d", resp.StatusCode)
	}

	var parsed Parsed
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Parsed{}, fmt.Errorf("decoding parse response: %w", err)
	}
	return parsed, nil
}

// BuildEvent constructs a full event from an extraction, interpreting
// the date and times as wall clock in loc. An end at or before the
// start rolls over to the next calendar day (a "10pm to 1am" event).
func BuildEvent(p Parsed, loc *time.Location) (model.Event, error) {
	if strings.TrimSpace(p.Title) == "" || p.Date.IsZero() || p.StartTime == "" || p.EndTime == "" {
		return model.Event{}, ErrIncomplete
	}

	start, err := tz.WallClockToInstant(p.Date, p.StartTime, loc)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %v", ErrIncomplete, err)
	}
	end, err := tz.WallClockToInstant(p.Date, p.EndTime, loc)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %v", ErrIncomplete, err)
	}
	if !end.After(start) {
		end, err = tz.WallClockToInstant(p.Date.AddDays(1), p.EndTime, loc)
		if err != nil {
			return model.Event{}, err
		}
	}

	return model.Event{
		ID:          uuid.NewString(),
		Title:       p.Title,
		Start:       start,
		End:         end,
		Color:       model.DefaultColors[rand.Intn(len(model.DefaultColors))],
		Guests:      []string{},
		Attachments: []string{},
	}, nil
}
