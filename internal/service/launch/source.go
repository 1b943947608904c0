package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/local-notification/internal/config"
)

// StaticSource always returns the same intent, typically built from flags.
type StaticSource struct {
	intent *Intent
}

// NewStaticSource returns a source for the given intent. Nil means no intent.
func NewStaticSource(intent *Intent) *StaticSource {
	return &StaticSource{intent: intent}
}

// Intent returns a copy of the static intent.
func (s *StaticSource) Intent(context.Context) (*Intent, error) {
	if s.intent == nil {
		return nil, nil //nolint:nilnil // No intent is a valid state.
	}

	cloned := *s.intent
	cloned.Extras = slices.Clone(s.intent.Extras)

	return &cloned, nil
}

// intentFile is the YAML layout of an intent file.
type intentFile struct {
	Action string            `yaml:"action,omitempty"`
	URI    string            `yaml:"uri,omitempty"`
	Extras map[string]string `yaml:"extras,omitempty"`
}

// FileSource reads the intent from a YAML file on every call.
type FileSource struct {
	path string
}

// NewFileSource returns a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: filepath.Clean(path)}
}

// Intent reads and parses the file. A missing file means no intent.
func (s *FileSource) Intent(context.Context) (*Intent, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil //nolint:nilnil // No intent is a valid state.
		}

		return nil, fmt.Errorf("read intent file: %w", err)
	}

	var raw intentFile
	if err = yaml.Unmarshal(contents, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal intent file: %w", err)
	}

	intent := &Intent{
		Action: strings.TrimSpace(raw.Action),
		URI:    strings.TrimSpace(raw.URI),
		Extras: make([]Extra, 0, len(raw.Extras)),
	}

	for key, value := range raw.Extras {
		intent.Extras = append(intent.Extras, Extra{Key: key, Value: value})
	}

	return intent, nil
}

// WriteIntentFile stores intent at path in the layout FileSource reads.
func WriteIntentFile(path string, intent *Intent) error {
	raw := intentFile{
		Action: intent.Action,
		URI:    intent.URI,
	}

	if len(intent.Extras) > 0 {
		raw.Extras = make(map[string]string, len(intent.Extras))
		for _, e := range intent.Extras {
			raw.Extras[e.Key] = e.Value
		}
	}

	data, err := yaml.Marshal(&raw)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write intent file: %w", err)
	}

	return nil
}
