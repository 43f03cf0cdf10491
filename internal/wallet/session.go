package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Session caches unlocked private keys in a per-user file so the keychain
// is asked once per unlock rather than once per transaction.
//
//	macOS:   ~/Library/Caches/andycoin/session.json
//	Linux:   ~/.cache/andycoin/session.json
//	Windows: %LocalAppData%\andycoin\session.json
type Session struct {
	path string
}

// DefaultSession returns the session in the OS cache directory.
func DefaultSession() *Session {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return NewSession(filepath.Join(dir, "andycoin"))
}

// NewSession returns a session stored under dir.
func NewSession(dir string) *Session {
	return &Session{path: filepath.Join(dir, "session.json")}
}

// Path is the session file location.
func (s *Session) Path() string { return s.path }

// load returns the key map, empty (never nil) on any error.
func (s *Session) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	return m
}

func (s *Session) save(m map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return err
	}
	_ = os.Chmod(s.path, 0o600)
	return nil
}

// Snapshot returns a copy of every cached key in one read.
func (s *Session) Snapshot() map[string]string {
	return s.load()
}

// Get returns a cached key for ref.
func (s *Session) Get(ref string) (string, bool) {
	v, ok := s.load()[ref]
	return v, ok
}

// Unlocked reports whether the wallet called name is cached.
func (s *Session) Unlocked(name string) bool {
	_, ok := s.Get(keyRef(name))
	return ok
}

// Put caches a key for ref.
func (s *Session) Put(ref, hexKey string) error {
	m := s.load()
	m[ref] = hexKey
	return s.save(m)
}

// PutAll merges keys in a single read and write.
func (s *Session) PutAll(keys map[string]string) error {
	if len(keys) == 0 {
		return nil
	}
	m := s.load()
	for ref, hexKey := range keys {
		m[ref] = hexKey
	}
	return s.save(m)
}

// Remove evicts one key.
func (s *Session) Remove(ref string) {
	m := s.load()
	if _, ok := m[ref]; !ok {
		return
	}
	delete(m, ref)
	_ = s.save(m)
}

// Clear deletes the session file.
func (s *Session) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Active reports whether any key is cached.
func (s *Session) Active() bool {
	return len(s.load()) > 0
}

// Names returns the wallet names with cached keys.
func (s *Session) Names() []string {
	var names []string
	for ref := range s.load() {
		names = append(names, strings.TrimPrefix(ref, keychainService+"."))
	}
	return names
}
