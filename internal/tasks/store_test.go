package tasks_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"todoapp/internal/auth"
	"todoapp/internal/storage"
	"todoapp/internal/storage/memory"
	"todoapp/internal/tasks"
)

var epoch = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

type fixture struct {
	kv       *memory.Store
	accounts *auth.Store
	store    *tasks.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := memory.New()
	accounts := auth.New(kv, auth.WithHashCost(bcrypt.MinCost))
	require.NoError(t, accounts.Load())

	n := 0
	store, err := tasks.New(kv, accounts,
		tasks.WithClock(func() time.Time {
			n++
			return epoch.Add(time.Duration(n) * time.Second)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return &fixture{kv: kv, accounts: accounts, store: store}
}

func (f *fixture) register(t *testing.T, email string) auth.Session {
	t.Helper()
	sess, err := f.accounts.Register(email, "pw", email)
	require.NoError(t, err)
	return sess
}

func TestAdd_StampsIdentityAndTime(t *testing.T) {
	f := newFixture(t)
	sess := f.register(t, "alice@example.com")

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		task, err := f.store.Add(tasks.Draft{Title: fmt.Sprintf("task %d", i)})
		require.NoError(t, err)
		assert.NotEmpty(t, task.ID)
		assert.False(t, seen[task.ID], "id %s reused", task.ID)
		seen[task.ID] = true
		assert.Equal(t, sess.ID, task.UserID)
		assert.False(t, task.CreatedAt.IsZero())
		assert.Equal(t, tasks.DefaultPriority, task.Priority)
		assert.Equal(t, tasks.DefaultCategory, task.Category)
	}

	list := f.store.List()
	require.Len(t, list, 5)
	assert.Equal(t, "task 0", list[0].Title)
	assert.Equal(t, "task 4", list[4].Title)

	// createdAt is persisted as an ISO-8601 timestamp.
	raw, err := f.kv.Get(storage.TasksKey(sess.ID))
	require.NoError(t, err)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(raw, &docs))
	_, err = time.Parse(time.RFC3339Nano, docs[0]["createdAt"].(string))
	assert.NoError(t, err)
}

func TestUpdate_KeepsStoredTimestampText(t *testing.T) {
	f := newFixture(t)
	sess := f.register(t, "alice@example.com")

	stored := `[{"id":"t1","title":"Buy milk","completed":false,"priority":"alta",` +
		`"category":"pessoal","createdAt":"2024-01-02T03:04:05.100Z","userId":"` + sess.ID + `"}]`
	require.NoError(t, f.kv.Set(storage.TasksKey(sess.ID), []byte(stored)))
	require.NoError(t, f.store.Reload())

	got, ok := f.store.Get("t1")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 100_000_000, time.UTC), got.CreatedAt.Time)

	title := "X"
	require.NoError(t, f.store.Update("t1", tasks.Patch{Title: &title}))

	raw, err := f.kv.Get(storage.TasksKey(sess.ID))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"createdAt":"2024-01-02T03:04:05.100Z"`)
	assert.Contains(t, string(raw), `"title":"X"`)
}

func TestToggle_TwiceRestores(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	task, err := f.store.Add(tasks.Draft{Title: "Buy milk"})
	require.NoError(t, err)

	require.NoError(t, f.store.Toggle(task.ID))
	got, ok := f.store.Get(task.ID)
	require.True(t, ok)
	assert.True(t, got.Completed)

	require.NoError(t, f.store.Toggle(task.ID))
	got, _ = f.store.Get(task.ID)
	assert.Equal(t, task, got)
}

func TestUpdate_ChangesOnlyPatchedFields(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	task, err := f.store.Add(tasks.Draft{
		Title:       "Buy milk",
		Description: "2 liters",
		Priority:    tasks.PriorityHigh,
		Category:    tasks.CategoryPersonal,
	})
	require.NoError(t, err)

	title := "X"
	require.NoError(t, f.store.Update(task.ID, tasks.Patch{Title: &title}))

	got, ok := f.store.Get(task.ID)
	require.True(t, ok)
	want := task
	want.Title = "X"
	assert.Equal(t, want, got)

	before, _ := json.Marshal(withTitle(task, ""))
	after, _ := json.Marshal(withTitle(got, ""))
	assert.Equal(t, string(before), string(after))
}

func TestUpdate_AllFields(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	task, err := f.store.Add(tasks.Draft{Title: "a"})
	require.NoError(t, err)

	title, desc, done := "b", "details", true
	prio, cat := tasks.PriorityLow, tasks.CategoryStudies
	require.NoError(t, f.store.Update(task.ID, tasks.Patch{
		Title: &title, Description: &desc, Completed: &done, Priority: &prio, Category: &cat,
	}))

	got, _ := f.store.Get(task.ID)
	assert.Equal(t, "b", got.Title)
	assert.Equal(t, "details", got.Description)
	assert.True(t, got.Completed)
	assert.Equal(t, tasks.PriorityLow, got.Priority)
	assert.Equal(t, tasks.CategoryStudies, got.Category)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, task.CreatedAt, got.CreatedAt)
	assert.Equal(t, task.UserID, got.UserID)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	sess := f.register(t, "alice@example.com")
	a, _ := f.store.Add(tasks.Draft{Title: "a"})
	b, _ := f.store.Add(tasks.Draft{Title: "b"})

	require.NoError(t, f.store.Delete(a.ID))
	assert.Equal(t, []tasks.Task{b}, f.store.List())

	require.NoError(t, f.store.Delete(b.ID))
	assert.Empty(t, f.store.List())

	raw, err := f.kv.Get(storage.TasksKey(sess.ID))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestUnknownID_IsSilentNoOp(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	task, _ := f.store.Add(tasks.Draft{Title: "a"})

	// Any write would now fail; a no-op must not attempt one.
	f.kv.SetErr = errors.New("no writes expected")

	title := "b"
	assert.NoError(t, f.store.Update("missing", tasks.Patch{Title: &title}))
	assert.NoError(t, f.store.Toggle("missing"))
	assert.NoError(t, f.store.Delete("missing"))
	assert.Equal(t, []tasks.Task{task}, f.store.List())

	_, ok := f.store.Get("missing")
	assert.False(t, ok)
}

func TestNoSession(t *testing.T) {
	f := newFixture(t)

	assert.Empty(t, f.store.List())

	task, err := f.store.Add(tasks.Draft{Title: "orphan"})
	require.NoError(t, err)
	assert.Equal(t, tasks.Task{}, task)
	assert.Empty(t, f.store.List())
	assert.Empty(t, f.kv.Keys("tasks:"))

	assert.NoError(t, f.store.Toggle("x"))
	assert.NoError(t, f.store.Delete("x"))
}

func TestSessionSwitch_IsolatesTasks(t *testing.T) {
	f := newFixture(t)

	alice := f.register(t, "alice@example.com")
	_, err := f.store.Add(tasks.Draft{Title: "alice 1"})
	require.NoError(t, err)
	_, err = f.store.Add(tasks.Draft{Title: "alice 2"})
	require.NoError(t, err)

	require.NoError(t, f.accounts.Logout())
	assert.Empty(t, f.store.List())

	bob := f.register(t, "bob@example.com")
	assert.Empty(t, f.store.List())
	_, err = f.store.Add(tasks.Draft{Title: "bob 1"})
	require.NoError(t, err)
	for _, task := range f.store.List() {
		assert.Equal(t, bob.ID, task.UserID)
	}

	require.NoError(t, f.accounts.Logout())
	_, err = f.accounts.Login("alice@example.com", "pw")
	require.NoError(t, err)

	list := f.store.List()
	require.Len(t, list, 2)
	for _, task := range list {
		assert.Equal(t, alice.ID, task.UserID)
	}
}

func TestSessionSwitch_ReadFailureClearsView(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	_, err := f.store.Add(tasks.Draft{Title: "alice 1"})
	require.NoError(t, err)
	require.NoError(t, f.accounts.Logout())

	f.register(t, "bob@example.com")
	_, err = f.store.Add(tasks.Draft{Title: "bob 1"})
	require.NoError(t, err)

	// Switching back to Alice cannot decode her tasks; Bob's must not linger.
	require.NoError(t, f.accounts.Logout())
	require.NoError(t, f.kv.Set(storage.TasksKey(mustAccountID(t, f, "alice@example.com")), []byte("{corrupt")))
	_, err = f.accounts.Login("alice@example.com", "pw")
	require.NoError(t, err)

	assert.Empty(t, f.store.List())
	assert.Error(t, f.store.Reload())
}

func TestNew_LoadsRestoredSession(t *testing.T) {
	kv := memory.New()
	accounts := auth.New(kv, auth.WithHashCost(bcrypt.MinCost))
	require.NoError(t, accounts.Load())
	sess, err := accounts.Register("alice@example.com", "pw", "Alice")
	require.NoError(t, err)

	first, err := tasks.New(kv, accounts)
	require.NoError(t, err)
	_, err = first.Add(tasks.Draft{Title: "persisted"})
	require.NoError(t, err)
	first.Close()

	// A fresh process restores the session and its tasks.
	restarted := auth.New(kv)
	require.NoError(t, restarted.Load())
	second, err := tasks.New(kv, restarted)
	require.NoError(t, err)
	defer second.Close()

	list := second.List()
	require.Len(t, list, 1)
	assert.Equal(t, "persisted", list[0].Title)
	assert.Equal(t, sess.ID, list[0].UserID)
}

func TestAdd_StorageFailureKeepsPreviousState(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	a, err := f.store.Add(tasks.Draft{Title: "a"})
	require.NoError(t, err)

	f.kv.SetErr = errors.New("quota exceeded")
	_, err = f.store.Add(tasks.Draft{Title: "b"})
	assert.ErrorContains(t, err, "quota exceeded")
	assert.Equal(t, []tasks.Task{a}, f.store.List())
}

func TestListReturnsCopy(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@example.com")
	_, err := f.store.Add(tasks.Draft{Title: "a"})
	require.NoError(t, err)

	list := f.store.List()
	list[0].Title = "mutated"
	assert.Equal(t, "a", f.store.List()[0].Title)
}

func withTitle(t tasks.Task, title string) tasks.Task {
	t.Title = title
	return t
}

func mustAccountID(t *testing.T, f *fixture, email string) string {
	t.Helper()
	accounts, err := f.accounts.Accounts()
	require.NoError(t, err)
	for _, a := range accounts {
		if a.Email == email {
			return a.ID
		}
	}
	t.Fatalf("no account %s", email)
	return ""
}
