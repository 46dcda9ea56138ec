// Package auth manages registered accounts and the single active session.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"todoapp/internal/storage"
)

var (
	// ErrDuplicateEmail is returned by Register when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials is returned by Login when no account matches.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrMissingField is returned by the Validate helpers for an empty field.
	ErrMissingField = errors.New("missing field")

	// ErrInvalidField is returned by the Validate helpers for a malformed field.
	ErrInvalidField = errors.New("invalid field")
)

// ValidateLogin checks that both login fields are present.
func ValidateLogin(email, password string) error {
	switch {
	case strings.TrimSpace(email) == "":
		return fmt.Errorf("%w: email required", ErrMissingField)
	case password == "":
		return fmt.Errorf("%w: password required", ErrMissingField)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email has no @: %s", ErrInvalidField, email)
	}
	return nil
}

// ValidateRegistration checks the registration fields.
func ValidateRegistration(email, password, name string) error {
	if err := ValidateLogin(email, password); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name required", ErrMissingField)
	}
	return nil
}

// Account is a registered identity.
type Account struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"passwordHash,omitempty"`

	// Password is only present on records written by older releases,
	// which kept it in plaintext. It is replaced by PasswordHash on the
	// first successful login.
	Password string `json:"password,omitempty"`
}

// Session returns the password-free view of the account.
func (a Account) Session() Session {
	return Session{ID: a.ID, Email: a.Email, Name: a.Name}
}

// Session is the currently authenticated identity.
type Session struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Store owns the account registry and the active session.
type Store struct {
	mu      sync.Mutex
	kv      storage.Store
	log     *slog.Logger
	newID   func() string
	cost    int
	session *Session
	loading bool

	subMu   sync.Mutex
	subs    map[int]func(*Session)
	subKeys []int
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for session transitions.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithIDFunc overrides account id generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithHashCost sets the bcrypt cost for new password hashes.
func WithHashCost(cost int) Option {
	return func(s *Store) { s.cost = cost }
}

// New creates a Store over kv. The store reports Loading until Load is called.
func New(kv storage.Store, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:   uuid.NewString,
		cost:    bcrypt.DefaultCost,
		loading: true,
		subs:    make(map[int]func(*Session)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores a previously persisted session. Credentials are not
// re-validated. A malformed record is ignored.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loading = false }()

	data, err := s.kv.Get(storage.SessionKey)
	if errors.Is(err, storage.ErrNotFound) {
		s.session = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil || sess.ID == "" {
		s.log.Debug("ignoring malformed session record", "err", err)
		s.session = nil
		return nil
	}

	s.session = &sess
	s.log.Debug("session restored", "account", sess.ID)
	return nil
}

// Loading reports whether Load has not completed yet.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Session returns the active session.
func (s *Store) Session() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// Accounts returns a snapshot of the account registry.
func (s *Store) Accounts() ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAccounts()
}

// Register creates an account and makes it the active session.
func (s *Store) Register(email, password, name string) (Session, error) {
	s.mu.Lock()

	accounts, err := s.readAccounts()
	if err != nil {
		s.mu.Unlock()
		return Session{}, err
	}
	for _, a := range accounts {
		if a.Email == email {
			s.mu.Unlock()
			return Session{}, ErrDuplicateEmail
		}
	}

	hash, err := s.hash(password)
	if err != nil {
		s.mu.Unlock()
		return Session{}, err
	}

	account := Account{
		ID:           s.newID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	accounts = append(accounts, account)
	if err := storage.SetJSON(s.kv, storage.AccountsKey, accounts); err != nil {
		s.mu.Unlock()
		return Session{}, err
	}

	sess := account.Session()
	if err := s.activate(&sess); err != nil {
		s.mu.Unlock()
		return Session{}, err
	}
	s.mu.Unlock()

	s.log.Debug("account registered", "account", sess.ID)
	s.publish(&sess)
	return sess, nil
}

// Login activates the session of the account matching email and password.
func (s *Store) Login(email, password string) (Session, error) {
	s.mu.Lock()

	accounts, err := s.readAccounts()
	if err != nil {
		s.mu.Unlock()
		return Session{}, err
	}

	idx := -1
	for i, a := range accounts {
		if a.Email == email && s.passwordMatches(a, password) {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return Session{}, ErrInvalidCredentials
	}

	if accounts[idx].PasswordHash == "" {
		if err := s.upgradeLegacy(accounts, idx, password); err != nil {
			s.mu.Unlock()
			return Session{}, err
		}
	}

	sess := accounts[idx].Session()
	if err := s.activate(&sess); err != nil {
		s.mu.Unlock()
		return Session{}, err
	}
	s.mu.Unlock()

	s.log.Debug("logged in", "account", sess.ID)
	s.publish(&sess)
	return sess, nil
}

// Logout clears the active session. Calling it with no session is a no-op.
func (s *Store) Logout() error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return nil
	}
	if err := s.kv.Remove(storage.SessionKey); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("remove session: %w", err)
	}
	prev := s.session.ID
	s.session = nil
	s.mu.Unlock()

	s.log.Debug("logged out", "account", prev)
	s.publish(nil)
	return nil
}

// Subscribe registers fn to be called after every session transition,
// with nil when the session ends. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(*Session)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	key := s.nextSub
	s.nextSub++
	s.subs[key] = fn
	s.subKeys = append(s.subKeys, key)
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, key)
		s.subKeys = slices.DeleteFunc(s.subKeys, func(k int) bool { return k == key })
	}
}

func (s *Store) publish(sess *Session) {
	s.subMu.Lock()
	var fns []func(*Session)
	for _, k := range s.subKeys {
		if fn, ok := s.subs[k]; ok {
			fns = append(fns, fn)
		}
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		if sess == nil {
			fn(nil)
			continue
		}
		cp := *sess
		fn(&cp)
	}
}

// activate persists sess and makes it current. Caller holds s.mu.
func (s *Store) activate(sess *Session) error {
	if err := storage.SetJSON(s.kv, storage.SessionKey, sess); err != nil {
		return err
	}
	s.session = sess
	return nil
}

// readAccounts loads the registry. Caller holds s.mu.
func (s *Store) readAccounts() ([]Account, error) {
	var accounts []Account
	if _, err := storage.GetJSON(s.kv, storage.AccountsKey, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *Store) passwordMatches(a Account, password string) bool {
	if a.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), prehash(password)) == nil
	}
	if a.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.Password), []byte(password)) == 1
}

// upgradeLegacy replaces a plaintext password with a hash. Caller holds s.mu.
func (s *Store) upgradeLegacy(accounts []Account, idx int, password string) error {
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	accounts[idx].PasswordHash = hash
	accounts[idx].Password = ""
	if err := storage.SetJSON(s.kv, storage.AccountsKey, accounts); err != nil {
		return err
	}
	s.log.Debug("upgraded legacy password", "account", accounts[idx].ID)
	return nil
}

func (s *Store) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// prehash maps any password to 44 bytes, below bcrypt's 72-byte input limit.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
