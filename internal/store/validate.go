package store

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MinPasswordLength is the minimum accepted raw password length.
	MinPasswordLength = 6

	// MaxTitleLength bounds link titles.
	MaxTitleLength = 100

	// MaxDescriptionLength bounds link descriptions.
	MaxDescriptionLength = 500

	// MaxTags bounds the number of tags per link.
	MaxTags = 10
)

var (
	emailRe = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
	urlRe   = regexp.MustCompile(`^https?://(www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_+.~#?&/=]*)$`)
)

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field-level failures for one operation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// orNil returns nil when no failures were recorded, so callers can
// `return v.orNil()` directly.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NormalizeEmail trims and lowercases an email address. Uniqueness is
// case-insensitive because every write goes through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredentials checks signup input shape. email must already be normalized.
func ValidateCredentials(email, rawPassword string) error {
	v := &ValidationError{}
	if email == "" {
		v.add("email", "Please add an email")
	} else if !emailRe.MatchString(email) {
		v.add("email", "Please add a valid email")
	}
	if rawPassword == "" {
		v.add("password", "Please add a password")
	} else if len(rawPassword) < MinPasswordLength {
		v.add("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return v.orNil()
}

func validateURL(v *ValidationError, url string) {
	if url == "" {
		v.add("url", "Please add a URL")
	} else if !urlRe.MatchString(url) {
		v.add("url", "Please use a valid URL with HTTP or HTTPS")
	}
}

func validateTitle(v *ValidationError, title string) {
	if title == "" {
		v.add("title", "Please add a title")
	} else if len(title) > MaxTitleLength {
		v.add("title", fmt.Sprintf("Title cannot be more than %d characters", MaxTitleLength))
	}
}

func validateDescription(v *ValidationError, description string) {
	if len(description) > MaxDescriptionLength {
		v.add("description", fmt.Sprintf("Description cannot be more than %d characters", MaxDescriptionLength))
	}
}

func validateTags(v *ValidationError, tags []string) {
	if len(tags) > MaxTags {
		v.add("tags", fmt.Sprintf("Cannot have more than %d tags", MaxTags))
	}
}
