package cache

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

var keyPrefix = []byte("sample/")

// Pebble is a persistent cached-sample index. Each entry maps a sample name
// to the id of the run that cached it, so several runs can share one index.
type Pebble struct {
	db    *pebble.DB
	runID ksuid.KSUID
}

// OpenPebble opens or creates the index in dir. Entries written through
// Mark are stamped with runID.
func OpenPebble(dir string, runID ksuid.KSUID) (*Pebble, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening cache index %s: %w", dir, err)
	}
	return &Pebble{db: db, runID: runID}, nil
}

func sampleKey(name string) []byte {
	key := make([]byte, 0, len(keyPrefix)+len(name))
	key = append(key, keyPrefix...)
	return append(key, name...)
}

// Mark records name as cached by this run.
func (p *Pebble) Mark(name string) error {
	return p.db.Set(sampleKey(name), p.runID.Bytes(), pebble.NoSync)
}

// Forget removes name from the index.
func (p *Pebble) Forget(name string) error {
	return p.db.Delete(sampleKey(name), pebble.NoSync)
}

// Owner returns the id of the run that cached name.
func (p *Pebble) Owner(name string) (ksuid.KSUID, bool, error) {
	value, closer, err := p.db.Get(sampleKey(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return ksuid.Nil, false, nil
	}
	if err != nil {
		return ksuid.Nil, false, err
	}
	defer closer.Close()

	id, err := ksuid.FromBytes(value)
	if err != nil {
		return ksuid.Nil, false, fmt.Errorf("corrupt cache entry for %q: %w", name, err)
	}
	return id, true, nil
}

// ShouldSkip reports whether name is in the index. Lookup errors count as a
// miss so the sample is read normally.
func (p *Pebble) ShouldSkip(name string) bool {
	_, ok, err := p.Owner(name)
	return err == nil && ok
}

// Close flushes and closes the index.
func (p *Pebble) Close() error {
	if err := p.db.Flush(); err != nil {
		p.db.Close()
		return err
	}
	return p.db.Close()
}
