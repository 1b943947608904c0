package consent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/local-notification/internal/config"
	domain "github.com/oshokin/local-notification/internal/domain/notification"
)

// Repository defines persistence operations for the consent record.
type Repository interface {
	Load(ctx context.Context) (*domain.Consent, error)
	Save(ctx context.Context, consent *domain.Consent) error
}

// FileRepository persists the consent record to a JSON file on disk.
// The JSON is a protobuf Struct so the same encoder serves the file and the wire.
type FileRepository struct {
	// path is the filesystem location of the consent file.
	path string
	// mu serializes access to the consent file.
	mu sync.Mutex
}

// Field names of the stored record.
const (
	fieldGranted   = "granted"
	fieldTimestamp = "timestamp"
	fieldHostname  = "hostname"
	fieldUsername  = "username"
)

var (
	// ErrNotFound is returned when no answer has been recorded yet.
	ErrNotFound = errors.New("consent not found")
	// errNilConsent is returned when Save receives nil.
	errNilConsent = errors.New("consent is nil")
)

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the consent record from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Consent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read consent file: %w", err)
	}

	var record structpb.Struct
	if err = protojson.Unmarshal(contents, &record); err != nil {
		return nil, fmt.Errorf("decode consent file: %w", err)
	}

	return fromStruct(&record)
}

// Save writes the consent record to disk.
func (r *FileRepository) Save(_ context.Context, consent *domain.Consent) error {
	if consent == nil {
		return errNilConsent
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := toStruct(consent)
	if err != nil {
		return fmt.Errorf("encode consent: %w", err)
	}

	data, err := protojson.MarshalOptions{Multiline: true}.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode consent: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write consent file: %w", err)
	}

	return nil
}

// fromStruct converts the stored record into the domain Consent.
func fromStruct(record *structpb.Struct) (*domain.Consent, error) {
	fields := record.GetFields()

	consent := &domain.Consent{
		Granted: fields[fieldGranted].GetBoolValue(),
	}

	if raw := fields[fieldTimestamp].GetStringValue(); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("decode consent timestamp: %w", err)
		}

		consent.Timestamp = ts
	}

	hostname := fields[fieldHostname].GetStringValue()
	username := fields[fieldUsername].GetStringValue()

	if hostname != "" || username != "" {
		consent.Actor = &domain.Actor{
			Hostname: hostname,
			Username: username,
		}
	}

	return consent, nil
}

// toStruct converts the domain Consent into the stored record.
func toStruct(consent *domain.Consent) (*structpb.Struct, error) {
	fields := map[string]any{
		fieldGranted: consent.Granted,
	}

	if !consent.Timestamp.IsZero() {
		fields[fieldTimestamp] = consent.Timestamp.UTC().Format(time.RFC3339Nano)
	}

	if consent.Actor != nil {
		fields[fieldHostname] = consent.Actor.Hostname
		fields[fieldUsername] = consent.Actor.Username
	}

	return structpb.NewStruct(fields)
}
