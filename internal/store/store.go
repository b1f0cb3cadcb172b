package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"filippo.io/age"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"spv-projection/internal/model"
)

const (
	// ageHeader is the prefix of age-encrypted files
	ageHeader = "age-encryption.org"

	fileExt = ".json"
)

var (
	ErrNotFound = errors.New("scenario not found")
	ErrLocked   = errors.New("scenario is encrypted and no passphrase was given")
	ErrNoName   = errors.New("scenario name is required")
)

// Scenario is a named, saved plan. Results are optional.
type Scenario struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Timestamp time.Time            `json:"timestamp"`
	Settings  model.Settings       `json:"settings"`
	Results   *model.ScenarioRange `json:"results,omitempty"`
}

// Store keeps one file per scenario in a directory. With a passphrase, files
// are written age-encrypted; plain files stay readable either way. Without a
// passphrase, encrypted files are skipped: List shows only the plain ones and
// Load or Delete of a name not found among them reports ErrLocked.
type Store struct {
	dir        string
	identity   *age.ScryptIdentity
	recipient  *age.ScryptRecipient
	workFactor int
	now        func() time.Time
	mu         sync.RWMutex
}

type Option func(*Store)

// WithPassphrase enables scrypt encryption for written files and decryption
// of encrypted ones.
func WithPassphrase(p string) Option {
	return func(s *Store) {
		if p == "" {
			return
		}
		s.identity, _ = age.NewScryptIdentity(p)
		s.recipient, _ = age.NewScryptRecipient(p)
	}
}

// WithWorkFactor sets the scrypt work factor (log2 N) for new files.
func WithWorkFactor(logN int) Option {
	return func(s *Store) { s.workFactor = logN }
}

func withClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open prepares a store rooted at dir, creating it when missing.
func Open(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	s := &Store{dir: dir, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if s.recipient != nil && s.workFactor > 0 {
		s.recipient.SetWorkFactor(s.workFactor)
	}
	return s, nil
}

func (s *Store) Dir() string { return s.dir }

// Encrypted reports whether new files are written encrypted.
func (s *Store) Encrypted() bool { return s.recipient != nil }

// Save writes sc, replacing any readable scenario with the same name. The ID
// of a replaced scenario is kept; a new one gets a fresh ID. The timestamp is
// set to now.
func (s *Store) Save(sc Scenario) (Scenario, error) {
	sc.Name = strings.TrimSpace(sc.Name)
	if sc.Name == "" {
		return Scenario{}, ErrNoName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, _, err := s.readAll()
	if err != nil {
		return Scenario{}, err
	}
	sc.ID = uuid.Nil
	for _, existing := range all {
		if existing.Name == sc.Name {
			sc.ID = existing.ID
			break
		}
	}
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	sc.Timestamp = s.now().UTC()

	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return Scenario{}, fmt.Errorf("encode scenario: %w", err)
	}
	if s.recipient != nil {
		if data, err = encryptData(data, s.recipient); err != nil {
			return Scenario{}, fmt.Errorf("encrypt scenario: %w", err)
		}
	}
	// write then rename so readers never see a partial file
	path := s.pathFor(sc.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return Scenario{}, fmt.Errorf("write scenario: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return Scenario{}, fmt.Errorf("write scenario: %w", err)
	}
	return sc, nil
}

// Load returns the scenario called name.
func (s *Store) Load(name string) (Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all, locked, err := s.readAll()
	if err != nil {
		return Scenario{}, err
	}
	for _, sc := range all {
		if sc.Name == name {
			return sc, nil
		}
	}
	return Scenario{}, missing(name, locked)
}

// List returns every saved scenario sorted by name.
func (s *Store) List() ([]Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all, _, err := s.readAll()
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

// Delete removes the scenario called name.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, locked, err := s.readAll()
	if err != nil {
		return err
	}
	for _, sc := range all {
		if sc.Name == name {
			return os.Remove(s.pathFor(sc.ID))
		}
	}
	return missing(name, locked)
}

// missing reports a name that no readable file carries. With encrypted files
// skipped, it may live in one of them.
func missing(name string, locked int) error {
	if locked > 0 {
		return fmt.Errorf("%w: %q not found among readable scenarios", ErrLocked, name)
	}
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

func (s *Store) pathFor(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+fileExt)
}

// readAll decodes every scenario file. Encrypted files that cannot be opened
// without a passphrase are counted in locked instead of failing the read.
func (s *Store) readAll() (out []Scenario, locked int, err error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, 0, fmt.Errorf("read store dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		sc, err := s.readFile(filepath.Join(s.dir, e.Name()))
		if errors.Is(err, ErrLocked) {
			locked++
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", e.Name(), err)
		}
		out = append(out, sc)
	}
	return out, locked, nil
}

func (s *Store) readFile(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	if isEncrypted(data) {
		if s.identity == nil {
			return Scenario{}, ErrLocked
		}
		if data, err = decryptData(data, s.identity); err != nil {
			return Scenario{}, fmt.Errorf("decrypt: %w", err)
		}
	}
	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("decode: %w", err)
	}
	return sc, nil
}

func isEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(ageHeader))
}

func encryptData(data []byte, recipient *age.ScryptRecipient) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decryptData(data []byte, identity *age.ScryptIdentity) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
