// Package assets is the offline cache for the browser build: a named
// cache filled on install and served cache-first with an upstream
// fallback.
package assets

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Name   string
	Assets []string
	// Dir is the badger directory. Empty keeps the cache in memory.
	Dir            string
	PopulateOnMiss bool
	Logger         logrus.FieldLogger
}

type meta struct {
	ContentType string    `json:"content_type"`
	ETag        string    `json:"etag"`
	Stored      time.Time `json:"stored"`
}

type Cache struct {
	name     string
	assets   []string
	populate bool
	db       *badger.DB
	upstream Fetcher
	log      logrus.FieldLogger
}

// Open opens (or creates) the store behind a named cache.
func Open(opts Options, upstream Fetcher) (*Cache, error) {
	if opts.Name == "" {
		return nil, errors.New("cache name is empty")
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("cache", opts.Name)

	bopts := badger.DefaultOptions(opts.Dir).WithLogger(badgerLogger{log})
	if opts.Dir == "" {
		bopts = bopts.WithInMemory(true)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}
	assets := make([]string, len(opts.Assets))
	for i, p := range opts.Assets {
		assets[i] = cleanPath(p)
	}
	return &Cache{
		name:     opts.Name,
		assets:   assets,
		populate: opts.PopulateOnMiss,
		db:       db,
		upstream: upstream,
		log:      log,
	}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

func (c *Cache) Name() string { return c.name }

// cleanPath is the key form of a request path, so every spelling of one
// asset shares a single entry.
func cleanPath(p string) string { return path.Clean("/" + p) }

func (c *Cache) prefix() []byte { return []byte(c.name + "\x00") }

func (c *Cache) bodyKey(p string) []byte { return []byte(c.name + "\x00b\x00" + p) }

func (c *Cache) metaKey(p string) []byte { return []byte(c.name + "\x00m\x00" + p) }

// Install fetches every listed asset and stores them together. If any
// fetch fails nothing is written.
func (c *Cache) Install(ctx context.Context) error {
	fetched := make([]Asset, 0, len(c.assets))
	for _, p := range c.assets {
		a, err := c.upstream.Fetch(ctx, p)
		if err != nil {
			return fmt.Errorf("install %s: %w", c.name, err)
		}
		a.Path = p
		fetched = append(fetched, a)
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for _, a := range fetched {
		if err := c.write(wb.Set, a); err != nil {
			return fmt.Errorf("install %s: %w", c.name, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("install %s: %w", c.name, err)
	}
	c.log.WithField("assets", len(fetched)).Info("cache installed")
	return nil
}

// Put stores a single asset.
func (c *Cache) Put(a Asset) error {
	a.Path = cleanPath(a.Path)
	return c.db.Update(func(txn *badger.Txn) error {
		return c.write(txn.Set, a)
	})
}

func (c *Cache) write(set func(k, v []byte) error, a Asset) error {
	sum := sha256.Sum256(a.Body)
	m, err := json.Marshal(meta{
		ContentType: a.ContentType,
		ETag:        `"` + hex.EncodeToString(sum[:16]) + `"`,
		Stored:      time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := set(c.metaKey(a.Path), m); err != nil {
		return err
	}
	return set(c.bodyKey(a.Path), a.Body)
}

// Lookup returns the cached asset for a request path.
func (c *Cache) Lookup(p string) (Asset, bool, error) {
	a, _, ok, err := c.lookup(cleanPath(p))
	return a, ok, err
}

func (c *Cache) lookup(p string) (Asset, meta, bool, error) {
	var (
		a  = Asset{Path: p}
		m  meta
		ok bool
	)
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.metaKey(p))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("decode meta for %s: %w", p, err)
		}
		item, err = txn.Get(c.bodyKey(p))
		if err != nil {
			return err
		}
		if a.Body, err = item.ValueCopy(nil); err != nil {
			return err
		}
		a.ContentType = m.ContentType
		ok = true
		return nil
	})
	if err != nil {
		return Asset{}, meta{}, false, fmt.Errorf("lookup %s: %w", p, err)
	}
	return a, m, ok, nil
}

// Purge drops every entry of this cache.
func (c *Cache) Purge() error {
	if err := c.db.DropPrefix(c.prefix()); err != nil {
		return fmt.Errorf("purge %s: %w", c.name, err)
	}
	return nil
}

// ServeHTTP answers from the cache first and falls back to the upstream.
func (c *Cache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	p := cleanPath(r.URL.Path)
	log := c.log.WithField("path", p)

	a, m, ok, err := c.lookup(p)
	if err != nil {
		log.WithError(err).Error("cache lookup failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if ok {
		w.Header().Set("X-Cache", "hit")
		w.Header().Set("ETag", m.ETag)
		serve(w, r, a)
		return
	}

	a, err = c.upstream.Fetch(r.Context(), p)
	if errors.Is(err, ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.WithError(err).Warn("upstream fetch failed")
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	a.Path = p
	if c.populate {
		if err := c.Put(a); err != nil {
			log.WithError(err).Warn("cache populate failed")
		}
	}
	w.Header().Set("X-Cache", "miss")
	serve(w, r, a)
}

func serve(w http.ResponseWriter, r *http.Request, a Asset) {
	w.Header().Set("Content-Type", a.ContentType)
	http.ServeContent(w, r, a.Path, time.Time{}, bytes.NewReader(a.Body))
}

type badgerLogger struct{ log logrus.FieldLogger }

func (l badgerLogger) Errorf(f string, args ...interface{})   { l.log.Errorf(f, args...) }
func (l badgerLogger) Warningf(f string, args ...interface{}) { l.log.Warningf(f, args...) }
func (l badgerLogger) Infof(f string, args ...interface{})    { l.log.Debugf(f, args...) }
func (l badgerLogger) Debugf(f string, args ...interface{})   { l.log.Debugf(f, args...) }
