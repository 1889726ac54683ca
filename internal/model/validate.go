package model

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Validation failures abort a mutation before any state change. They
// are reported to the caller at the point of entry.
var (
	ErrEmptyTitle       = errors.New("title must not be empty")
	ErrEndNotAfterStart = errors.New("end time must be after start time")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateGuest checks a single guest address for format; it does not
// check membership.
func ValidateGuest(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid guest email %q", email)
	}
	return nil
}

// ValidateAttachment checks that a link is an absolute URL.
func ValidateAttachment(link string) error {
	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid attachment URL %q", link)
	}
	return nil
}

// Validate checks the event's invariants: a non-empty title, End after
// Start, well-formed unique guests, and well-formed unique attachments.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if !e.End.After(e.Start) {
		return ErrEndNotAfterStart
	}

	seenGuests := make(map[string]struct{}, len(e.Guests))
	for _, g := range e.Guests {
		if err := ValidateGuest(g); err != nil {
			return err
		}
		if _, dup := seenGuests[g]; dup {
			return fmt.Errorf("duplicate guest %q", g)
		}
		seenGuests[g] = struct{}{}
	}

	seenLinks := make(map[string]struct{}, len(e.Attachments))
	for _, a := range e.Attachments {
		if err := ValidateAttachment(a); err != nil {
			return err
		}
		if _, dup := seenLinks[a]; dup {
			return fmt.Errorf("duplicate attachment %q", a)
		}
		seenLinks[a] = struct{}{}
	}

	return nil
}

// Validate checks the task's invariants.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}
