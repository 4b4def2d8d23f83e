package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"
)

// keyPrefix namespaces graph records in the key space.
const keyPrefix = "graph:"

// Badger is a Store backed by BadgerDB. Each record is one msgpack value
// under graph:<id>.
type Badger struct {
	db     *badger.DB
	closed atomic.Bool
}

// NewBadger opens a BadgerDB store in dir. With inMemory set nothing is
// written to disk and dir may be empty.
func NewBadger(dir string, inMemory bool) (*Badger, error) {
	if !inMemory && dir == "" {
		return nil, errors.New("store.NewBadger: dir is required for on-disk mode")
	}
	opts := badger.DefaultOptions(dir).WithLogger(slogLogger{})
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(slogLogger{})
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store.NewBadger: %w", err)
	}
	return &Badger{db: db}, nil
}

func graphKey(id string) []byte {
	return []byte(keyPrefix + id)
}

func (b *Badger) Get(_ context.Context, id string) (*Record, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(graphKey(id))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store.Get: %w", err)
	}
	rec, err := decodeRecord(val, true)
	if err != nil {
		return nil, fmt.Errorf("store.Get: %w", err)
	}
	return rec, nil
}

func (b *Badger) Put(_ context.Context, rec *Record) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if rec.ID == "" {
		return ErrInvalidID
	}
	val, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("store.Put: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(graphKey(rec.ID), val)
	})
}

func (b *Badger) Delete(_ context.Context, id string) error {
	if b.closed.Load() {
		return ErrClosed
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(graphKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(graphKey(id))
	})
}

func (b *Badger) List(_ context.Context) ([]Record, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	prefix := []byte(keyPrefix)
	var out []Record
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := decodeRecord(val, false)
			if err != nil {
				return err
			}
			out = append(out, *rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store.List: %w", err)
	}
	sortRecords(out)
	return out, nil
}

func (b *Badger) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.db.Close()
}

// slogLogger forwards badger warnings and errors to slog and drops the rest.
type slogLogger struct{}

func (slogLogger) Errorf(f string, v ...any) {
	slog.Error("badger: " + strings.TrimSpace(fmt.Sprintf(f, v...)))
}
func (slogLogger) Warningf(f string, v ...any) {
	slog.Warn("badger: " + strings.TrimSpace(fmt.Sprintf(f, v...)))
}
func (slogLogger) Infof(string, ...any)  {}
func (slogLogger) Debugf(string, ...any) {}

var _ badger.Logger = slogLogger{}
