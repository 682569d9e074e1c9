// Package repository persists the five storefront collections.
//
// Every backend stores one JSON array per collection key. Whole-collection
// replace is a single write; order append, user registration and block toggles
// are read-modify-write sequences serialized per collection inside the store.
// There is no atomicity across collections.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Showrav193/Sportsworld/internal/domain/model"
	"github.com/Showrav193/Sportsworld/pkg/logger"
	"github.com/Showrav193/Sportsworld/pkg/metrics"
)

// Store provides durable read/write access to the collections.
type Store interface {
	// Load decodes the stored array of c into dst (a pointer to a slice).
	Load(ctx context.Context, c model.Collection, dst any) error

	// Replace overwrites collection c with records, which must encode to a JSON array.
	Replace(ctx context.Context, c model.Collection, records any) error

	// AppendOrder prepends a single order; existing orders are kept.
	AppendOrder(ctx context.Context, o model.Order) error

	// RegisterUser appends a user.
	RegisterUser(ctx context.Context, u model.User) error

	// SetUserBlocked patches the blocked flag of the user with userID.
	// Unknown ids leave the collection unchanged.
	SetUserBlocked(ctx context.Context, userID string, blocked bool) error

	Close() error
}

// backend moves raw collection arrays to and from a medium.
type backend interface {
	name() string
	// read returns nil when nothing was ever stored under c.
	read(ctx context.Context, c model.Collection) ([]byte, error)
	write(ctx context.Context, c model.Collection, payload []byte) error
	// empty reports whether the medium has never been initialized.
	empty(ctx context.Context) (bool, error)
	// init writes the initial payload of every collection at once.
	init(ctx context.Context, doc map[model.Collection]json.RawMessage) error
	close() error
}

type store struct {
	b      backend
	locks  map[model.Collection]*sync.Mutex
	logger logger.Logger

	mu     sync.RWMutex
	closed bool
}

func newStore(ctx context.Context, b backend, opts ...Option) (*store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &store{
		b:      b,
		locks:  make(map[model.Collection]*sync.Mutex),
		logger: o.logger.Named(b.name()),
	}
	for _, c := range model.Collections() {
		s.locks[c] = &sync.Mutex{}
	}

	empty, err := b.empty(ctx)
	if err != nil {
		return nil, ioErr("inspect", "", err)
	}
	if empty {
		doc, err := seedDocument(o.seedDemo, o.now())
		if err != nil {
			return nil, err
		}
		if err := b.init(ctx, doc); err != nil {
			return nil, ioErr("seed", "", err)
		}
		s.logger.Info(ctx, "store initialized", logger.Bool("demo", o.seedDemo))
	}
	return s, nil
}

func (s *store) lock(c model.Collection) (func(), error) {
	m, ok := s.locks[c]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	m.Lock()
	return func() {
		m.Unlock()
		s.mu.RUnlock()
	}, nil
}

func (s *store) Load(ctx context.Context, c model.Collection, dst any) (err error) {
	unlock, err := s.lock(c)
	if err != nil {
		return err
	}
	defer unlock()
	defer func() { metrics.RecordStoreRead(c.String(), err) }()

	raw, err := s.read(ctx, c)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return ioErr("decode", c, err)
	}
	return nil
}

func (s *store) Replace(ctx context.Context, c model.Collection, records any) error {
	payload, err := encodeArray(records)
	if err != nil {
		return err
	}

	unlock, err := s.lock(c)
	if err != nil {
		return err
	}
	defer unlock()

	return s.write(ctx, c, "replace", payload)
}

func (s *store) AppendOrder(ctx context.Context, o model.Order) error { //nolint:gocritic // hugeParam
	return s.modify(ctx, model.CollectionOrders, "append", func(raw []json.RawMessage) ([]json.RawMessage, error) {
		rec, err := json.Marshal(o)
		if err != nil {
			return nil, err
		}
		return append([]json.RawMessage{rec}, raw...), nil
	})
}

func (s *store) RegisterUser(ctx context.Context, u model.User) error { //nolint:gocritic // hugeParam
	return s.modify(ctx, model.CollectionUsers, "register", func(raw []json.RawMessage) ([]json.RawMessage, error) {
		rec, err := json.Marshal(u)
		if err != nil {
			return nil, err
		}
		return append(raw, rec), nil
	})
}

func (s *store) SetUserBlocked(ctx context.Context, userID string, blocked bool) error {
	return s.modify(ctx, model.CollectionUsers, "block", func(raw []json.RawMessage) ([]json.RawMessage, error) {
		for i, rec := range raw {
			var fields map[string]json.RawMessage
			if err := json.Unmarshal(rec, &fields); err != nil {
				return nil, err
			}
			var id string
			if err := json.Unmarshal(fields["id"], &id); err != nil || id != userID {
				continue
			}
			fields["isBlocked"] = json.RawMessage(fmt.Sprint(blocked))
			patched, err := json.Marshal(fields)
			if err != nil {
				return nil, err
			}
			raw[i] = patched
		}
		return raw, nil
	})
}

// modify runs a read-modify-write on the raw records of c under its lock.
// Records are kept as raw JSON so fields unknown to this service survive.
func (s *store) modify(ctx context.Context, c model.Collection, op string, fn func([]json.RawMessage) ([]json.RawMessage, error)) error {
	unlock, err := s.lock(c)
	if err != nil {
		return err
	}
	defer unlock()

	raw, err := s.read(ctx, c)
	if err != nil {
		return err
	}
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return ioErr("decode", c, err)
	}
	records, err = fn(records)
	if err != nil {
		return ioErr(op, c, err)
	}
	payload, err := encodeArray(records)
	if err != nil {
		return err
	}
	return s.write(ctx, c, op, payload)
}

func (s *store) read(ctx context.Context, c model.Collection) ([]byte, error) {
	raw, err := s.b.read(ctx, c)
	if err != nil {
		return nil, ioErr("read", c, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []byte("[]"), nil
	}
	return raw, nil
}

func (s *store) write(ctx context.Context, c model.Collection, op string, payload []byte) error {
	start := time.Now()
	err := s.b.write(ctx, c, payload)
	metrics.RecordStoreWrite(c.String(), op, err, float64(time.Since(start).Milliseconds()))
	if err != nil {
		return ioErr(op, c, err)
	}
	s.logger.Debug(ctx, "collection written",
		logger.String("collection", c.String()),
		logger.String("op", op),
		logger.Int("bytes", len(payload)),
	)
	return nil
}

func (s *store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.b.close()
}

// encodeArray marshals records and checks the result is a JSON array.
// A nil slice is stored as an empty array.
func encodeArray(records any) ([]byte, error) {
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotArray, err)
	}
	payload = bytes.TrimSpace(payload)
	if bytes.Equal(payload, []byte("null")) {
		return []byte("[]"), nil
	}
	if len(payload) == 0 || payload[0] != '[' {
		return nil, ErrNotArray
	}
	return payload, nil
}
