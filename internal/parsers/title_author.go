package parsers

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrEmptyText        = errors.New("Please enter text.")
	ErrMissingSeparator = errors.New("Expected: {title} by {author}.")
)

const separator = "by"

// WhitespacePolicy controls how whitespace in the parsed title and author
// is normalised.
type WhitespacePolicy string

const (
	// WhitespaceTrim removes surrounding whitespace only.
	WhitespaceTrim WhitespacePolicy = "trim"
	// WhitespaceStrip removes every whitespace character.
	WhitespaceStrip WhitespacePolicy = "strip"
)

// ParseWhitespacePolicy maps a configuration value to a policy. An empty
// value selects WhitespaceTrim.
func ParseWhitespacePolicy(value string) (WhitespacePolicy, error) {
	switch WhitespacePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", WhitespaceTrim:
		return WhitespaceTrim, nil
	case WhitespaceStrip:
		return WhitespaceStrip, nil
	default:
		return "", fmt.Errorf("unknown whitespace policy %q", value)
	}
}

func (p WhitespacePolicy) apply(s string) string {
	if p == WhitespaceStrip {
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
	}
	return strings.TrimSpace(s)
}

var (
	sanitizer       = bluemonday.StrictPolicy()
	boundedSepRegex = regexp.MustCompile(`\s` + separator + `\s`)
)

// ParseTitleAuthor splits free text of the form "<title> by <author>".
// Markup is stripped before splitting, including markup hidden behind
// HTML entities. Both halves must be non-empty. A standalone "by" is preferred as
// the separator; otherwise the first "by" anywhere in the text is used.
func ParseTitleAuthor(text string, policy WhitespacePolicy) (string, string, error) {
	if strings.TrimSpace(text) == "" {
		return "", "", ErrEmptyText
	}

	clean := plainText(text)
	if strings.TrimSpace(clean) == "" {
		return "", "", ErrEmptyText
	}

	var title, author string
	if loc := boundedSepRegex.FindStringIndex(clean); loc != nil {
		// loc spans the surrounding whitespace characters as well
		title, author = clean[:loc[0]], clean[loc[1]:]
	} else if idx := strings.Index(clean, separator); idx >= 0 {
		title, author = clean[:idx], clean[idx+len(separator):]
	} else {
		return "", "", ErrMissingSeparator
	}

	title, author = policy.apply(title), policy.apply(author)
	if title == "" || author == "" {
		return "", "", ErrMissingSeparator
	}
	return title, author, nil
}

const maxSanitizePasses = 8

// plainText strips markup and decodes entities. Entity-encoded markup is
// decoded before sanitizing so it cannot turn back into tags; the result
// is a fixed point of sanitize-then-unescape and holds no elements.
func plainText(text string) string {
	decoded := text
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(decoded)
		if next == decoded {
			break
		}
		decoded = next
	}

	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(sanitizer.Sanitize(decoded))
		if next == decoded {
			return decoded
		}
		decoded = next
	}
	// Still changing: keep the escaped form rather than risk live markup.
	return sanitizer.Sanitize(decoded)
}
