package auth_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"todoapp/internal/auth"
	"todoapp/internal/storage"
	"todoapp/internal/storage/memory"
)

func newStore(t *testing.T, kv storage.Store) *auth.Store {
	t.Helper()
	n := 0
	s := auth.New(kv,
		auth.WithHashCost(bcrypt.MinCost),
		auth.WithIDFunc(func() string {
			n++
			return fmt.Sprintf("acc-%d", n)
		}),
	)
	require.NoError(t, s.Load())
	return s
}

func TestRegister_ActivatesSession(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv)

	sess, err := s.Register("alice@example.com", "secret", "Alice")
	require.NoError(t, err)
	assert.Equal(t, auth.Session{ID: "acc-1", Email: "alice@example.com", Name: "Alice"}, sess)

	active, ok := s.Session()
	require.True(t, ok)
	assert.Equal(t, sess, active)

	// The persisted session carries no password field.
	raw, err := kv.Get(storage.SessionKey)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.ElementsMatch(t, []string{"id", "email", "name"}, keys(fields))

	accounts, err := s.Accounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.NotEqual(t, "secret", accounts[0].PasswordHash)
	assert.Empty(t, accounts[0].Password)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newStore(t, memory.New())

	_, err := s.Register("alice@example.com", "secret", "Alice")
	require.NoError(t, err)

	_, err = s.Register("alice@example.com", "other", "Alice Two")
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)

	accounts, err := s.Accounts()
	require.NoError(t, err)
	count := 0
	for _, a := range accounts {
		if a.Email == "alice@example.com" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRegister_EmailIsCaseSensitive(t *testing.T) {
	s := newStore(t, memory.New())

	_, err := s.Register("alice@example.com", "secret", "Alice")
	require.NoError(t, err)
	_, err = s.Register("Alice@example.com", "secret", "Alice")
	assert.NoError(t, err)
}

func TestRegister_UniqueIDs(t *testing.T) {
	s := auth.New(memory.New(), auth.WithHashCost(bcrypt.MinCost))
	require.NoError(t, s.Load())

	a, err := s.Register("a@example.com", "pw", "A")
	require.NoError(t, err)
	b, err := s.Register("b@example.com", "pw", "B")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestLogin(t *testing.T) {
	s := newStore(t, memory.New())
	reg, err := s.Register("alice@example.com", "secret", "Alice")
	require.NoError(t, err)
	require.NoError(t, s.Logout())

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"correct", "alice@example.com", "secret", nil},
		{"wrong password", "alice@example.com", "nope", auth.ErrInvalidCredentials},
		{"unknown email", "bob@example.com", "secret", auth.ErrInvalidCredentials},
		{"empty password", "alice@example.com", "", auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.Logout())

			sess, err := s.Login(tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				_, ok := s.Session()
				assert.False(t, ok, "no session should be active")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, reg, sess)
		})
	}
}

func TestLogin_UpgradesLegacyPlaintext(t *testing.T) {
	kv := memory.New()
	legacy := `[{"id":"1700000000000","email":"old@example.com","password":"hunter2","name":"Old"}]`
	require.NoError(t, kv.Set(storage.AccountsKey, []byte(legacy)))

	s := newStore(t, kv)

	_, err := s.Login("old@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	sess, err := s.Login("old@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", sess.ID)

	accounts, err := s.Accounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Empty(t, accounts[0].Password)
	assert.NotEmpty(t, accounts[0].PasswordHash)
	assert.NotContains(t, accounts[0].PasswordHash, "hunter2")

	// Still works after the upgrade.
	require.NoError(t, s.Logout())
	_, err = s.Login("old@example.com", "hunter2")
	assert.NoError(t, err)
}

func TestRegister_LongPassword(t *testing.T) {
	s := newStore(t, memory.New())
	long := strings.Repeat("x", 73)

	_, err := s.Register("a@example.com", long, "A")
	require.NoError(t, err)
	require.NoError(t, s.Logout())

	// bcrypt alone would only see the first 72 bytes.
	_, err = s.Login("a@example.com", long[:72])
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	sess, err := s.Login("a@example.com", long)
	require.NoError(t, err)
	assert.Equal(t, "A", sess.Name)
}

func TestLogin_UpgradesLongLegacyPassword(t *testing.T) {
	kv := memory.New()
	long := strings.Repeat("p", 80)
	legacy := `[{"id":"1","email":"old@example.com","password":"` + long + `","name":"Old"}]`
	require.NoError(t, kv.Set(storage.AccountsKey, []byte(legacy)))

	s := newStore(t, kv)
	_, err := s.Login("old@example.com", long)
	require.NoError(t, err)

	accounts, err := s.Accounts()
	require.NoError(t, err)
	assert.Empty(t, accounts[0].Password)

	require.NoError(t, s.Logout())
	_, err = s.Login("old@example.com", long)
	assert.NoError(t, err)
}

func TestLogout_Idempotent(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv)

	require.NoError(t, s.Logout())

	_, err := s.Register("alice@example.com", "secret", "Alice")
	require.NoError(t, err)
	require.NoError(t, s.Logout())
	require.NoError(t, s.Logout())

	_, ok := s.Session()
	assert.False(t, ok)
	_, err = kv.Get(storage.SessionKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLoad(t *testing.T) {
	t.Run("restores persisted session", func(t *testing.T) {
		kv := memory.New()
		require.NoError(t, kv.Set(storage.SessionKey, []byte(`{"id":"7","email":"a@b.c","name":"A"}`)))

		s := auth.New(kv)
		assert.True(t, s.Loading())
		require.NoError(t, s.Load())
		assert.False(t, s.Loading())

		sess, ok := s.Session()
		require.True(t, ok)
		assert.Equal(t, auth.Session{ID: "7", Email: "a@b.c", Name: "A"}, sess)
	})

	t.Run("ignores malformed session", func(t *testing.T) {
		kv := memory.New()
		require.NoError(t, kv.Set(storage.SessionKey, []byte(`{"id":`)))

		s := auth.New(kv)
		require.NoError(t, s.Load())
		_, ok := s.Session()
		assert.False(t, ok)
	})

	t.Run("ignores session without id", func(t *testing.T) {
		kv := memory.New()
		require.NoError(t, kv.Set(storage.SessionKey, []byte(`{"email":"a@b.c"}`)))

		s := auth.New(kv)
		require.NoError(t, s.Load())
		_, ok := s.Session()
		assert.False(t, ok)
	})

	t.Run("no session", func(t *testing.T) {
		s := auth.New(memory.New())
		require.NoError(t, s.Load())
		_, ok := s.Session()
		assert.False(t, ok)
		assert.False(t, s.Loading())
	})

	t.Run("storage failure", func(t *testing.T) {
		kv := memory.New()
		kv.GetErr = errors.New("disk gone")
		s := auth.New(kv)
		assert.ErrorContains(t, s.Load(), "disk gone")
		assert.False(t, s.Loading())
	})
}

func TestSubscribe(t *testing.T) {
	s := newStore(t, memory.New())

	var seen []string
	cancel := s.Subscribe(func(sess *auth.Session) {
		if sess == nil {
			seen = append(seen, "<nil>")
			return
		}
		seen = append(seen, sess.ID)
	})

	_, err := s.Register("a@example.com", "pw", "A")
	require.NoError(t, err)
	require.NoError(t, s.Logout())
	require.NoError(t, s.Logout()) // no transition, no event
	_, err = s.Login("a@example.com", "pw")
	require.NoError(t, err)
	_, err = s.Login("a@example.com", "bad")
	require.Error(t, err)

	cancel()
	require.NoError(t, s.Logout())

	assert.Equal(t, []string{"acc-1", "<nil>", "acc-1"}, seen)
}

func TestSubscribe_CancelReleasesSlot(t *testing.T) {
	s := newStore(t, memory.New())

	calls := 0
	keep := s.Subscribe(func(*auth.Session) { calls++ })
	defer keep()
	for i := 0; i < 50; i++ {
		cancel := s.Subscribe(func(*auth.Session) { t.Error("cancelled subscriber called") })
		cancel()
	}
	assert.Equal(t, 1, auth.Subscribers(s))

	_, err := s.Register("a@example.com", "pw", "A")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRegister_StorageFailureLeavesNoSession(t *testing.T) {
	kv := memory.New()
	s := newStore(t, kv)
	kv.SetErr = errors.New("quota exceeded")

	_, err := s.Register("a@example.com", "pw", "A")
	assert.ErrorContains(t, err, "quota exceeded")
	_, ok := s.Session()
	assert.False(t, ok)
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		email, password, name string
		wantErr               error
		want                  string
	}{
		{"a@example.com", "pw", "A", nil, ""},
		{"  ", "pw", "A", auth.ErrMissingField, "missing field: email required"},
		{"a@example.com", "", "A", auth.ErrMissingField, "missing field: password required"},
		{"a@example.com", "pw", " ", auth.ErrMissingField, "missing field: name required"},
		{"nobody", "pw", "A", auth.ErrInvalidField, "invalid field: email has no @: nobody"},
	}
	for _, tt := range tests {
		err := auth.ValidateRegistration(tt.email, tt.password, tt.name)
		if tt.wantErr == nil {
			assert.NoError(t, err)
			continue
		}
		assert.ErrorIs(t, err, tt.wantErr)
		assert.EqualError(t, err, tt.want)
	}
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
