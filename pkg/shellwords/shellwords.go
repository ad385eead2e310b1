package shellwords

import (
	"errors"
	"strings"
)

var (
	ErrUnterminatedQuote = errors.New("unterminated quote")
	ErrTrailingEscape    = errors.New("trailing backslash")
)

// metachars are rejected wholesale before any tokenization happens.
// Scanning the raw string means even quoted metacharacters are refused,
// which keeps the boundary conservative.
var metachars = []string{"||", "|", "&&", "&", ";", "$(", "`", ">>", ">", "<", "\n"}

// FindMetachar returns the first shell metacharacter present anywhere in
// the raw input, or "" if none occur.
func FindMetachar(input string) string {
	found := ""
	foundAt := len(input)
	for _, mc := range metachars {
		if at := strings.Index(input, mc); at >= 0 && at < foundAt {
			found = mc
			foundAt = at
		}
	}
	return found
}

// Split splits input into shell words. It honors single quotes, double
// quotes and backslash escapes, and performs no globbing, no variable
// expansion and no command substitution.
func Split(input string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	var inSingleQuote, inDoubleQuote, escaped, hasToken bool

	for _, r := range input {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
			}
		case '\'':
			if inDoubleQuote {
				current.WriteRune(r)
			} else {
				inSingleQuote = !inSingleQuote
				hasToken = true
			}
		case '"':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				inDoubleQuote = !inDoubleQuote
				hasToken = true
			}
		case ' ', '\t':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if current.Len() > 0 || hasToken {
				tokens = append(tokens, current.String())
				current.Reset()
				hasToken = false
			}
		default:
			current.WriteRune(r)
		}
	}

	if escaped {
		return nil, ErrTrailingEscape
	}
	if inSingleQuote || inDoubleQuote {
		return nil, ErrUnterminatedQuote
	}

	if current.Len() > 0 || hasToken {
		tokens = append(tokens, current.String())
	}

	return tokens, nil
}
