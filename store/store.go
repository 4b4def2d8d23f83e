// Package store keeps built knowledge graphs under opaque identifiers. A
// graph is published to a Store only after it has been fully built, so every
// reader sees an immutable graph.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/bbiangul/kgqa/graph"
)

var (
	// ErrNotFound is returned when no graph is stored under an id.
	ErrNotFound = errors.New("store: graph not found")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("store: closed")
	// ErrInvalidID is returned by Put for a record without an id.
	ErrInvalidID = errors.New("store: empty graph id")
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Record is a stored graph with its metadata.
type Record struct {
	ID          string       `json:"graph_id"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	TextCount   int          `json:"text_count"`
	Stats       graph.Stats  `json:"stats"`
	Graph       *graph.Graph `json:"-"`
}

// Store is a registry of built graphs.
type Store interface {
	// Get returns the record stored under id, graph included.
	Get(ctx context.Context, id string) (*Record, error)
	// Put inserts or replaces the record with rec.ID.
	Put(ctx context.Context, rec *Record) error
	// Delete removes the record stored under id.
	Delete(ctx context.Context, id string) error
	// List returns the metadata of every record, oldest first. Graphs are
	// not loaded.
	List(ctx context.Context) ([]Record, error)
	Close() error
}

// Open creates the backend named by kind. path is the database file for
// sqlite and the data directory for badger; an empty badger path runs in
// memory.
func Open(kind, path string) (Store, error) {
	switch kind {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		return NewSQLite(path)
	case BackendBadger:
		return NewBadger(path, path == "")
	default:
		return nil, fmt.Errorf("store.Open: unknown backend %q", kind)
	}
}

// envelope is the serialised form of a Record.
type envelope struct {
	ID          string      `msgpack:"id"`
	Description string      `msgpack:"description"`
	CreatedAt   time.Time   `msgpack:"created_at"`
	TextCount   int         `msgpack:"text_count"`
	Stats       graph.Stats `msgpack:"stats"`
	Graph       []byte      `msgpack:"graph"`
}

func encodeRecord(rec *Record) ([]byte, error) {
	g, err := graph.Encode(rec.Graph)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(envelope{
		ID:          rec.ID,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
		TextCount:   rec.TextCount,
		Stats:       rec.Stats,
		Graph:       g,
	})
}

// decodeRecord unpacks an envelope. The graph is only decoded when
// withGraph is set.
func decodeRecord(data []byte, withGraph bool) (*Record, error) {
	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	rec := &Record{
		ID:          env.ID,
		Description: env.Description,
		CreatedAt:   env.CreatedAt,
		TextCount:   env.TextCount,
		Stats:       env.Stats,
	}
	if withGraph {
		g, err := graph.Decode(env.Graph)
		if err != nil {
			return nil, err
		}
		rec.Graph = g
	}
	return rec, nil
}

// sortRecords orders records by creation time, then id.
func sortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}
