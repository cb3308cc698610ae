package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_PutGet(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mgr := NewManager(10 * time.Minute)
	mgr.now = func() time.Time { return now }

	mgr.Put(&State{UserID: "u1", VUID: 42, Phase: PhaseAwaitingCard})

	st, expired := mgr.Get("u1")
	require.NotNil(t, st)
	assert.False(t, expired)
	assert.Equal(t, 42, st.VUID)
	assert.Equal(t, now.Add(10*time.Minute), st.ExpiresAt)
}

func TestManager_GetMissing(t *testing.T) {
	mgr := NewManager(10 * time.Minute)

	st, expired := mgr.Get("nobody")
	assert.Nil(t, st)
	assert.False(t, expired)
}

func TestManager_ExpiryIsCheckedOnAccess(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mgr := NewManager(10 * time.Minute)
	mgr.now = func() time.Time { return now }

	mgr.Put(&State{UserID: "u1", VUID: 42, Phase: PhaseAwaitingCard})

	now = now.Add(11 * time.Minute)
	st, expired := mgr.Get("u1")
	assert.Nil(t, st)
	assert.True(t, expired)

	// expiry is reported once; the state is gone afterwards
	st, expired = mgr.Get("u1")
	assert.Nil(t, st)
	assert.False(t, expired)
}

func TestManager_PutReplacesPrevious(t *testing.T) {
	mgr := NewManager(10 * time.Minute)

	mgr.Put(&State{UserID: "u1", VUID: 42, Phase: PhaseAwaitingCard})
	mgr.Put(&State{UserID: "u1", VUID: 77, Phase: PhaseAwaitingCard})

	st, _ := mgr.Get("u1")
	require.NotNil(t, st)
	assert.Equal(t, 77, st.VUID)
}

func TestManager_ExtendRestartsClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mgr := NewManager(10 * time.Minute)
	mgr.now = func() time.Time { return now }

	st := &State{UserID: "u1", VUID: 42, Phase: PhaseAwaitingCard}
	mgr.Put(st)

	now = now.Add(8 * time.Minute)
	mgr.Extend(st)

	now = now.Add(9 * time.Minute) // 17 min after Put, 9 after Extend
	got, expired := mgr.Get("u1")
	require.NotNil(t, got)
	assert.False(t, expired)
}
