package storage

import (
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// File is a Store backed by a single JSON document on disk. When constructed
// with an encryption key the document is sealed with XChaCha20-Poly1305, so
// a bearer credential is never written to disk in the clear.
//
// Every operation reads the document fresh and rewrites it atomically
// (temp file + rename), so two processes sharing the same path see each
// other's writes.
type File struct {
	mu   sync.Mutex
	path string
	aead func() (aead, error)
}

type aead interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

// FileOption configures a File store.
type FileOption func(*File)

// WithEncryptionKey seals the on-disk document with the given 32-byte key.
func WithEncryptionKey(key []byte) FileOption {
	return func(f *File) {
		f.aead = func() (aead, error) {
			return chacha20poly1305.NewX(key)
		}
	}
}

// NewFile creates a file-backed store at path. The parent directory must
// exist or be creatable.
func NewFile(path string, options ...FileOption) (*File, error) {
	if path == "" {
		return nil, errors.New("[NewFile] path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFile] create parent directory")
	}

	f := &File{path: path}
	for _, opt := range options {
		opt(f)
	}

	// Fail construction, not the first Get, on a bad key.
	if f.aead != nil {
		if _, err := f.aead(); err != nil {
			return nil, errors.Wrap(err, "[NewFile] encryption key")
		}
	}
	return f, nil
}

// Get retrieves the value stored under key.
func (f *File) Get(key string) (string, error) {
	if key == "" {
		return "", errors.New("key is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return "", err
	}

	value, ok := entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (f *File) Set(key, value string) error {
	if key == "" {
		return errors.New("key is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return f.save(entries)
}

// Delete removes the entry under key, if present.
func (f *File) Delete(key string) error {
	if key == "" {
		return errors.New("key is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return f.save(entries)
}

func (f *File) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[File.load] read")
	}
	if len(raw) == 0 {
		return make(map[string]string), nil
	}

	if f.aead != nil {
		raw, err = f.open(raw)
		if err != nil {
			return nil, err
		}
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errors.Wrap(err, "[File.load] unmarshal")
	}
	return entries, nil
}

func (f *File) save(entries map[string]string) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "[File.save] marshal")
	}

	if f.aead != nil {
		raw, err = f.seal(raw)
		if err != nil {
			return err
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrap(err, "[File.save] write")
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(err, "[File.save] rename")
	}
	return nil
}

func (f *File) seal(plaintext []byte) ([]byte, error) {
	cipher, err := f.aead()
	if err != nil {
		return nil, errors.Wrap(err, "[File.seal] cipher")
	}
	nonce := make([]byte, cipher.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "[File.seal] nonce")
	}
	return cipher.Seal(nonce, nonce, plaintext, nil), nil
}

func (f *File) open(sealed []byte) ([]byte, error) {
	cipher, err := f.aead()
	if err != nil {
		return nil, errors.Wrap(err, "[File.open] cipher")
	}
	if len(sealed) < cipher.NonceSize() {
		return nil, errors.New("[File.open] sealed document too short")
	}
	nonce, ciphertext := sealed[:cipher.NonceSize()], sealed[cipher.NonceSize():]
	plaintext, err := cipher.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[File.open] decrypt")
	}
	return plaintext, nil
}
