// Package irfile reads and writes the bundle the upstream compiler hands to
// the backend: the crate catalog plus the translation units to build.
package irfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"mirc/internal/hir"
	"mirc/internal/trans"
)

// SchemaVersion is bumped whenever the encoded shape of Bundle changes.
const SchemaVersion uint16 = 1

// ErrSchema is returned for bundles written with another schema version.
var ErrSchema = errors.New("irfile: unsupported bundle schema")

// Bundle is the on-disk input of a build.
type Bundle struct {
	Schema uint16
	Crate  *hir.Crate
	Units  []trans.Unit
}

// New returns a bundle at the current schema.
func New(crate *hir.Crate, units ...trans.Unit) *Bundle {
	return &Bundle{Schema: SchemaVersion, Crate: crate, Units: units}
}

// Unit finds a unit by name.
func (b *Bundle) Unit(name string) (trans.Unit, bool) {
	for _, u := range b.Units {
		if u.Name == name {
			return u, true
		}
	}
	return trans.Unit{}, false
}

// Check verifies the bundle is usable: a catalog is present and unit names
// are unique, non-empty and usable as file names.
func (b *Bundle) Check() error {
	if b.Schema != SchemaVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrSchema, b.Schema, SchemaVersion)
	}
	if b.Crate == nil {
		return errors.New("irfile: bundle has no crate")
	}
	var errs []error
	seen := make(map[string]bool, len(b.Units))
	for i, u := range b.Units {
		switch {
		case u.Name == "":
			errs = append(errs, fmt.Errorf("unit %d: empty name", i))
		case strings.ContainsAny(u.Name, `/\`) || u.Name == "." || u.Name == "..":
			errs = append(errs, fmt.Errorf("unit %q: name is not a plain file name", u.Name))
		case seen[u.Name]:
			errs = append(errs, fmt.Errorf("unit %q: duplicate name", u.Name))
		}
		seen[u.Name] = true
	}
	return errors.Join(errs...)
}

// Encode writes b to w.
func Encode(w io.Writer, b *Bundle) error {
	return msgpack.NewEncoder(w).Encode(b)
}

// Decode reads a bundle from r and checks it.
func Decode(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := msgpack.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("irfile: decode: %w", err)
	}
	if err := b.Check(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Load reads the bundle stored at path.
func Load(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Save writes b to path. The file is replaced atomically so readers never
// observe a partial bundle.
func Save(path string, b *Bundle) error {
	return WriteAtomic(path, func(w io.Writer) error {
		return Encode(w, b)
	})
}

// WriteAtomic creates path through a temporary file in the same directory
// that is renamed into place once fill succeeds.
func WriteAtomic(path string, fill func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = fill(f); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
