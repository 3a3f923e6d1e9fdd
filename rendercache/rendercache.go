// Package rendercache remembers finished rasters on disk, keyed by everything
// that went into producing them.
package rendercache

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dgraph-io/badger"
	"golang.org/x/xerrors"

	"whitted/raster"
)

const keyPrefix = "raster/"

type Cache struct {
	DB *badger.DB
}

func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, xerrors.Errorf("while opening badger kv dir %q: %w", dir, err)
	}
	return &Cache{DB: db}, nil
}

func (c *Cache) Close() error {
	if err := c.DB.Close(); err != nil {
		return xerrors.Errorf("while closing database: %w", err)
	}
	return nil
}

// Key digests the scene description and the render parameters.  Any change
// to either produces a different key.
func Key(sceneBytes []byte, params ...interface{}) []byte {
	h := sha256.New()
	h.Write(sceneBytes)
	for _, p := range params {
		fmt.Fprintf(h, "\x00%#v", p)
	}
	return append([]byte(keyPrefix), fmt.Sprintf("%x", h.Sum(nil))...)
}

// DigestFiles hashes the contents of every named file, so that a key can
// cover the files a scene description refers to.  Unreadable files hash as
// missing rather than failing, since the loader renders them untextured.
func DigestFiles(paths []string) string {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, p := range sorted {
		fmt.Fprintf(h, "%s\x00", p)
		f, err := os.Open(p)
		if err != nil {
			fmt.Fprint(h, "missing\x00")
			continue
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			fmt.Fprint(h, "unreadable\x00")
		}
		fmt.Fprint(h, "\x00")
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get returns the cached raster for key, a "found" indicator, and an error.
func (c *Cache) Get(key []byte) (*raster.Image, bool, error) {
	var value []byte
	err := c.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if xerrors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, xerrors.Errorf("while reading cache entry: %w", err)
	}

	im, err := raster.ReadRaw(bytes.NewReader(value))
	if err != nil {
		return nil, false, xerrors.Errorf("while decoding cache entry: %w", err)
	}
	return im, true, nil
}

func (c *Cache) Put(key []byte, im *raster.Image) error {
	buf := &bytes.Buffer{}
	if err := raster.WriteRaw(im, buf); err != nil {
		return xerrors.Errorf("while encoding cache entry: %w", err)
	}

CommitRetry:
	err := c.DB.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf.Bytes())
	})
	if xerrors.Is(err, badger.ErrConflict) {
		goto CommitRetry
	} else if err != nil {
		return xerrors.Errorf("while writing cache entry: %w", err)
	}
	return nil
}
