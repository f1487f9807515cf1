package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/dmarkhas/renderdeploy-go/internal/logger"
)

const manifestContentType = "application/zstd"

// Manifest is the archived record of one deploy run.
type Manifest struct {
	RunID      string        `json:"run_id"`
	ServiceID  string        `json:"service_id,omitempty"`
	Action     string        `json:"action"`
	Status     string        `json:"status"`
	ServiceURL string        `json:"service_url,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	StartedAt  time.Time     `json:"started_at"`
	Version    string        `json:"tool_version,omitempty"`
}

// ObjectStore is the subset of Client the archiver uses. Faked in tests.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Archiver writes manifests under a fixed key prefix.
type Archiver struct {
	store  ObjectStore
	prefix string
	log    *logger.Logger
}

// New creates an Archiver storing manifests under prefix.
func New(store ObjectStore, prefix string, log *logger.Logger) *Archiver {
	return &Archiver{
		store:  store,
		prefix: prefix,
		log:    log.WithModule("archive"),
	}
}

// Key returns the object key a manifest is stored under. Keys sort
// chronologically so a plain prefix listing reads as a timeline.
func (a *Archiver) Key(m Manifest) string {
	return fmt.Sprintf("%s%s-%s.json.zst", a.prefix, m.StartedAt.UTC().Format("20060102T150405Z"), m.RunID)
}

// Store compresses and uploads the manifest, returning its key.
func (a *Archiver) Store(ctx context.Context, m Manifest) (string, error) {
	if m.RunID == "" {
		return "", errors.New("archive: manifest run ID is required")
	}

	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("archive: marshal manifest: %w", err)
	}

	compressed, err := compress(data)
	if err != nil {
		return "", err
	}

	key := a.Key(m)
	if _, err := a.store.Put(ctx, key, bytes.NewReader(compressed), manifestContentType); err != nil {
		return "", err
	}

	a.log.WithField("key", key).WithField("bytes", len(compressed)).Debug("manifest archived")
	return key, nil
}

// Fetch downloads and decodes the manifest at key.
func (a *Archiver) Fetch(ctx context.Context, key string) (Manifest, error) {
	body, err := a.store.Get(ctx, key)
	if err != nil {
		return Manifest{}, err
	}
	defer body.Close()

	data, err := decompress(body)
	if err != nil {
		return Manifest{}, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("archive: decode manifest %q: %w", key, err)
	}
	return m, nil
}

// Latest returns the most recent manifest under the archiver's prefix,
// or ErrObjectNotFound when the archive is empty.
func (a *Archiver) Latest(ctx context.Context) (Manifest, error) {
	keys, err := a.store.List(ctx, a.prefix)
	if err != nil {
		return Manifest{}, err
	}
	if len(keys) == 0 {
		return Manifest{}, ErrObjectNotFound
	}
	// Keys embed the start time, so the lexically greatest is the newest.
	newest := keys[0]
	for _, key := range keys[1:] {
		if key > newest {
			newest = key
		}
	}
	return a.Fetch(ctx, newest)
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	encoder, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("archive: create encoder: %w", err)
	}
	if _, err := encoder.Write(data); err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("archive: compress: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("archive: close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(r io.Reader) ([]byte, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("archive: create decoder: %w", err)
	}
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("archive: decompress: %w", err)
	}
	return data, nil
}
