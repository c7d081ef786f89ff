// Package snapshot persists token lists, collection lists, and difference
// reports as pretty-printed JSON files in one output directory.
//
// Files are written to a temporary name and renamed into place, so an
// interrupted run never leaves a truncated artifact that a later run would
// mistake for a complete snapshot.
package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/errors"
	"github.com/agentstation/nftrecon/pkg/logging"
	"github.com/agentstation/nftrecon/pkg/tokens"
)

// Store reads and writes named artifacts under a directory.
type Store struct {
	dir      string
	readOnly bool
}

// Option configures a Store.
type Option func(*Store)

// WithReadOnly turns Save into a no-op. Loads still read from disk.
func WithReadOnly() Option {
	return func(s *Store) {
		s.readOnly = true
	}
}

// New creates a Store rooted at dir.
func New(dir string, opts ...Option) *Store {
	if dir == "" {
		dir = constants.DefaultOutputDir
	}
	s := &Store{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

// ReadOnly reports whether saves are skipped.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// Path returns the full path of the named artifact.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether the named artifact is present.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir()
}

// Save writes v as indented JSON to the named artifact.
func (s *Store) Save(name string, v any) error {
	if s.readOnly {
		logging.Debug().Str("artifact", name).Msg("Read-only store, skipping save")
		return nil
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", constants.JSONIndent)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return errors.WrapParse("json", name, err)
	}

	if err := os.MkdirAll(s.dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-*")
	if err != nil {
		return errors.WrapIO("create", s.Path(name), err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", s.Path(name), err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", s.Path(name), err)
	}
	if err := os.Chmod(tmpName, constants.FilePermissions); err != nil {
		return errors.WrapIO("chmod", s.Path(name), err)
	}
	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		return errors.WrapIO("rename", s.Path(name), err)
	}

	logging.Debug().Str("path", s.Path(name)).Int("bytes", buf.Len()).Msg("Saved artifact")
	return nil
}

// Load decodes the named artifact into v. A missing artifact yields an
// error matching errors.ErrNotFound.
func (s *Store) Load(name string, v any) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("artifact", name)
		}
		return errors.WrapIO("read", s.Path(name), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.WrapParse("json", s.Path(name), err)
	}
	return nil
}

// SaveTokens writes a token list.
func (s *Store) SaveTokens(name string, list []tokens.Token) error {
	if list == nil {
		list = []tokens.Token{}
	}
	return s.Save(name, list)
}

// LoadTokens reads a token list.
func (s *Store) LoadTokens(name string) ([]tokens.Token, error) {
	var list []tokens.Token
	if err := s.Load(name, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SaveCollections writes a collection list.
func (s *Store) SaveCollections(name string, list []tokens.Collection) error {
	if list == nil {
		list = []tokens.Collection{}
	}
	return s.Save(name, list)
}

// LoadCollections reads a collection list.
func (s *Store) LoadCollections(name string) ([]tokens.Collection, error) {
	var list []tokens.Collection
	if err := s.Load(name, &list); err != nil {
		return nil, err
	}
	return list, nil
}
