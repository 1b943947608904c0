package launch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Intent is the raw launch input of the process.
type Intent struct {
	// Extras are raw key-value pairs; order is irrelevant.
	Extras []Extra
	// Action is the deep-link action, empty when absent.
	Action string
	// URI is the deep-link URI, empty when absent.
	URI string
}

// Extra is a single raw launch parameter.
type Extra struct {
	Key   string
	Value string
}

// Source provides the current launch intent. A nil intent with a nil error
// means the process was started without one.
type Source interface {
	Intent(ctx context.Context) (*Intent, error)
}

// Type prefixes understood by DecodeValue.
const (
	prefixString = "string:"
	prefixInt    = "int:"
	prefixFloat  = "float:"
	prefixBool   = "bool:"
	prefixList   = "list:"
)

var (
	// ErrMalformedExtra is returned by ParseExtra for input without "=".
	ErrMalformedExtra = errors.New("extra must look like key=value")
	// errEmptyKey is returned by ParseExtra for input with an empty key.
	errEmptyKey = errors.New("extra key is empty")
)

// DecodeValue converts a raw extra value into string, int64, float64, bool or []any.
func DecodeValue(raw string) (any, error) {
	switch {
	case strings.HasPrefix(raw, prefixString):
		return strings.TrimPrefix(raw, prefixString), nil
	case strings.HasPrefix(raw, prefixInt):
		v, err := strconv.ParseInt(strings.TrimPrefix(raw, prefixInt), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode int: %w", err)
		}

		return v, nil
	case strings.HasPrefix(raw, prefixFloat):
		v, err := strconv.ParseFloat(strings.TrimPrefix(raw, prefixFloat), 64)
		if err != nil {
			return nil, fmt.Errorf("decode float: %w", err)
		}

		return v, nil
	case strings.HasPrefix(raw, prefixBool):
		v, err := strconv.ParseBool(strings.TrimPrefix(raw, prefixBool))
		if err != nil {
			return nil, fmt.Errorf("decode bool: %w", err)
		}

		return v, nil
	case strings.HasPrefix(raw, prefixList):
		body := strings.TrimPrefix(raw, prefixList)
		if body == "" {
			return []any{}, nil
		}

		parts := strings.Split(body, ",")

		items := make([]any, len(parts))
		for i, p := range parts {
			items[i] = p
		}

		return items, nil
	default:
		return raw, nil
	}
}

// ParseExtra splits a "key=value" flag argument.
func ParseExtra(arg string) (Extra, error) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok {
		return Extra{}, fmt.Errorf("%w: %q", ErrMalformedExtra, arg)
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return Extra{}, fmt.Errorf("%w: %q", errEmptyKey, arg)
	}

	return Extra{Key: key, Value: value}, nil
}

// ParseExtras parses a list of "key=value" arguments.
func ParseExtras(args []string) ([]Extra, error) {
	extras := make([]Extra, 0, len(args))

	for _, arg := range args {
		e, err := ParseExtra(arg)
		if err != nil {
			return nil, err
		}

		extras = append(extras, e)
	}

	return extras, nil
}
