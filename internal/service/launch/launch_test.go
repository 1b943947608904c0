package launch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDecodeValue covers every type prefix and the plain-string fallback.
func TestDecodeValue(t *testing.T) {
	t.Parallel()

	cases := map[string]any{
		"X":            "X",
		"string:int:5": "int:5",
		"int:5":        int64(5),
		"float:2.5":    2.5,
		"bool:true":    true,
		"list:a,b":     []any{"a", "b"},
		"list:":        []any{},
		"app://deal/1": "app://deal/1",
		"":             "",
	}
	for raw, want := range cases {
		got, err := DecodeValue(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"int:abc", "float:x", "bool:maybe"} {
		_, err := DecodeValue(raw)
		require.Error(t, err, raw)
	}
}

// TestParseExtras validates key=value parsing.
func TestParseExtras(t *testing.T) {
	t.Parallel()

	extras, err := ParseExtras([]string{"promo=X", "url=a=b"})
	require.NoError(t, err)
	require.Equal(t, []Extra{{Key: "promo", Value: "X"}, {Key: "url", Value: "a=b"}}, extras)

	_, err = ParseExtras([]string{"promo"})
	require.ErrorIs(t, err, ErrMalformedExtra)

	_, err = ParseExtra(" =X")
	require.ErrorIs(t, err, errEmptyKey)
}

// TestStaticSource returns copies so callers cannot mutate the source.
func TestStaticSource(t *testing.T) {
	t.Parallel()

	none, err := NewStaticSource(nil).Intent(context.Background())
	require.NoError(t, err)
	require.Nil(t, none)

	src := NewStaticSource(&Intent{Action: "OPEN", Extras: []Extra{{Key: "promo", Value: "X"}}})

	first, err := src.Intent(context.Background())
	require.NoError(t, err)

	first.Extras[0].Value = "changed"

	second, err := src.Intent(context.Background())
	require.NoError(t, err)
	require.Equal(t, "X", second.Extras[0].Value)
	require.Equal(t, "OPEN", second.Action)
}

// TestFileSource_Roundtrip writes an intent file and reads it back.
func TestFileSource_Roundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "intent.yaml")
	src := NewFileSource(path)

	missing, err := src.Intent(context.Background())
	require.NoError(t, err)
	require.Nil(t, missing)

	want := &Intent{
		Action: "OPEN",
		URI:    "app://deal/1",
		Extras: []Extra{{Key: "promo", Value: "X"}},
	}
	require.NoError(t, WriteIntentFile(path, want))

	got, err := src.Intent(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// TestFileSource_Malformed verifies invalid YAML surfaces an error.
func TestFileSource_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "intent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extras: [unclosed"), 0o600))

	_, err := NewFileSource(path).Intent(context.Background())
	require.Error(t, err)
}
