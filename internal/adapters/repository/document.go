package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Showrav193/Sportsworld/internal/domain/model"
)

// documentBackend keeps every collection in one JSON document and rewrites the
// whole document on each write.
type documentBackend struct {
	blob Blob
	// mu serializes document rewrites across collections.
	mu sync.Mutex
}

// OpenDocument opens a store over a single-document blob, seeding it when absent.
func OpenDocument(ctx context.Context, blob Blob, opts ...Option) (Store, error) {
	return newStore(ctx, &documentBackend{blob: blob}, opts...)
}

// OpenFile opens a document store backed by the file at path.
func OpenFile(ctx context.Context, path string, opts ...Option) (Store, error) {
	return OpenDocument(ctx, FileBlob{Path: path}, opts...)
}

func (d *documentBackend) name() string { return "document" }

func (d *documentBackend) load(ctx context.Context) (map[model.Collection]json.RawMessage, error) {
	data, err := d.blob.Read(ctx)
	if errors.Is(err, ErrBlobNotFound) {
		return map[model.Collection]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.blob, err)
	}
	doc := map[model.Collection]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", d.blob, err)
	}
	return doc, nil
}

func (d *documentBackend) save(ctx context.Context, doc map[model.Collection]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := d.blob.Write(ctx, data); err != nil {
		return fmt.Errorf("write %s: %w", d.blob, err)
	}
	return nil
}

func (d *documentBackend) read(ctx context.Context, c model.Collection) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc[c], nil
}

func (d *documentBackend) write(ctx context.Context, c model.Collection, payload []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, err := d.load(ctx)
	if err != nil {
		return err
	}
	doc[c] = payload
	return d.save(ctx, doc)
}

func (d *documentBackend) empty(ctx context.Context) (bool, error) {
	_, err := d.blob.Read(ctx)
	if errors.Is(err, ErrBlobNotFound) {
		return true, nil
	}
	return false, err
}

func (d *documentBackend) init(ctx context.Context, doc map[model.Collection]json.RawMessage) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save(ctx, doc)
}

func (d *documentBackend) close() error { return nil }
