package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CreateAndGet(t *testing.T) {
	mgr := NewManager(NewMemoryStore())

	img := "/img/a.png"
	sess := &Session{
		UserID:       "u-1",
		Email:        "a@example.com",
		Nickname:     "alice",
		ProfileImage: &img,
		AccessToken:  "tok-1",
	}

	id, err := mgr.Create(t.Context(), sess, 3600)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, sess.ID)

	got, err := mgr.Get(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, "tok-1", got.AccessToken)
	require.NotNil(t, got.ProfileImage)
	assert.Equal(t, "/img/a.png", *got.ProfileImage)
	assert.WithinDuration(t, time.Now().Add(time.Hour), got.ExpiresAt, 5*time.Second)
}

func TestManager_GetUnknown(t *testing.T) {
	mgr := NewManager(NewMemoryStore())

	_, err := mgr.Get(t.Context(), "no-such-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_SaveMutation(t *testing.T) {
	mgr := NewManager(NewMemoryStore())

	sess := &Session{UserID: "u-1", AccessToken: "tok-old"}
	id, err := mgr.Create(t.Context(), sess, 3600)
	require.NoError(t, err)

	sess.AccessToken = "tok-new"
	sess.Nickname = "renamed"
	require.NoError(t, mgr.Save(t.Context(), sess))

	got, err := mgr.Get(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, "tok-new", got.AccessToken)
	assert.Equal(t, "renamed", got.Nickname)
	// Saving must not extend the lifetime.
	assert.Equal(t, sess.ExpiresAt.Unix(), got.ExpiresAt.Unix())
}

func TestManager_SaveWithoutID(t *testing.T) {
	mgr := NewManager(NewMemoryStore())

	err := mgr.Save(t.Context(), &Session{UserID: "u-1", ExpiresAt: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestManager_SaveExpired(t *testing.T) {
	mgr := NewManager(NewMemoryStore())

	err := mgr.Save(t.Context(), &Session{
		ID:        "s-1",
		UserID:    "u-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestManager_Delete(t *testing.T) {
	mgr := NewManager(NewMemoryStore())

	sess := &Session{UserID: "u-1"}
	id, err := mgr.Create(t.Context(), sess, 3600)
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(t.Context(), id))

	_, err = mgr.Get(t.Context(), id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Validate(t *testing.T) {
	mgr := NewManager(NewMemoryStore())

	sess := &Session{UserID: "u-1"}
	id, err := mgr.Create(t.Context(), sess, 3600)
	require.NoError(t, err)

	ok, err := mgr.Validate(t.Context(), id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mgr.Validate(t.Context(), "unknown")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_LazyExpiry(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Set(t.Context(), "k", "v", 10*time.Millisecond))

	v, err := store.Get(t.Context(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	time.Sleep(20 * time.Millisecond)

	_, err = store.Get(t.Context(), "k")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	exists, err := store.Exists(t.Context(), "k")
	require.NoError(t, err)
	assert.False(t, exists)
}
