package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/kiln-labs/kiln/internal/platform"
)

const (
	fileVersion = 1
	fileSuffix  = ".json"

	// Default scrypt parameters; stored per file so they can change
	// without invalidating old accounts.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1

	saltLen = 32
	keyLen  = 32

	// DirPerm and FilePerm keep key material private to the user.
	DirPerm  = os.FileMode(0700)
	FilePerm = os.FileMode(0600)
)

// ErrDecrypt is returned for any decryption failure. Wrong passphrase
// and tampered ciphertext are deliberately indistinguishable.
var ErrDecrypt = errors.New("cannot decrypt account")

// ErrNotFound is returned when the named account does not exist.
var ErrNotFound = errors.New("account not found")

type kdfParams struct {
	N    int    `json:"n"`
	R    int    `json:"r"`
	P    int    `json:"p"`
	Salt string `json:"salt"`
}

type encryptedFile struct {
	Version    int       `json:"version"`
	Address    string    `json:"address,omitempty"`
	KDF        kdfParams `json:"kdf"`
	Nonce      string    `json:"nonce"`
	Ciphertext string    `json:"ciphertext"`
}

// Store is an on-disk keystore of passphrase-encrypted accounts.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created lazily on
// first import.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the keystore directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path for a named account.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+fileSuffix)
}

// Import encrypts secret under passphrase and writes it as name.
// An existing account with the same name is never overwritten.
func (s *Store) Import(name string, secret, passphrase []byte, address string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if len(secret) == 0 {
		return errors.New("empty key material")
	}
	if len(passphrase) == 0 {
		return errors.New("empty passphrase")
	}

	path := s.Path(name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("account %q already exists at %s", name, path)
	}

	if err := os.MkdirAll(s.dir, DirPerm); err != nil {
		return fmt.Errorf("creating keystore directory: %w", err)
	}
	_ = platform.Chmod(s.dir, DirPerm)

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}

	key, err := scrypt.Key(passphrase, salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return fmt.Errorf("deriving key: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, secret, []byte(name))

	file := encryptedFile{
		Version: fileVersion,
		Address: address,
		KDF: kdfParams{
			N:    scryptN,
			R:    scryptR,
			P:    scryptP,
			Salt: base64.StdEncoding.EncodeToString(salt),
		},
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding account file: %w", err)
	}

	if err := os.WriteFile(path, data, FilePerm); err != nil {
		return fmt.Errorf("writing account file: %w", err)
	}
	_ = platform.Chmod(path, FilePerm)

	return nil
}

// Decrypt returns the plaintext key material for a named account.
func (s *Store) Decrypt(name string, passphrase []byte) ([]byte, error) {
	file, err := s.read(name)
	if err != nil {
		return nil, err
	}

	salt, err := base64.StdEncoding.DecodeString(file.KDF.Salt)
	if err != nil {
		return nil, ErrDecrypt
	}
	nonce, err := base64.StdEncoding.DecodeString(file.Nonce)
	if err != nil {
		return nil, ErrDecrypt
	}
	ciphertext, err := base64.StdEncoding.DecodeString(file.Ciphertext)
	if err != nil {
		return nil, ErrDecrypt
	}

	key, err := scrypt.Key(passphrase, salt, file.KDF.N, file.KDF.R, file.KDF.P, keyLen)
	if err != nil {
		return nil, ErrDecrypt
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, ErrDecrypt
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte(name))
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// Address returns the stored address hint for a named account, if any.
func (s *Store) Address(name string) (string, error) {
	file, err := s.read(name)
	if err != nil {
		return "", err
	}
	return file.Address, nil
}

// List returns the sorted names of all stored accounts.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading keystore directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes a named account.
func (s *Store) Remove(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	path := s.Path(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return os.Remove(path)
}

func (s *Store) read(name string) (*encryptedFile, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading account file: %w", err)
	}

	var file encryptedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing account file for %q: %w", name, err)
	}
	if file.Version != fileVersion {
		return nil, fmt.Errorf("account %q has unsupported file version %d", name, file.Version)
	}
	return &file, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return gcm, nil
}

// validateName keeps account names filesystem-safe.
func validateName(name string) error {
	if name == "" {
		return errors.New("account name is required")
	}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			continue
		}
		return fmt.Errorf("invalid account name %q: use letters, digits, '-' or '_'", name)
	}
	return nil
}
