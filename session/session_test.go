package session

import (
	"context"
	"testing"
	"time"

	"studiotributario-backend/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AcquireIsExclusive(t *testing.T) {
	s := New()

	release, err := s.Acquire()
	require.NoError(t, err)

	_, err = s.Acquire()
	assert.ErrorIs(t, err, ErrSessionBusy)

	release()
	release2, err := s.Acquire()
	require.NoError(t, err)
	release2()
}

func TestSession_SummarizeHidesCredentials(t *testing.T) {
	s := New()
	s.Credentials = Credentials{GeminiAPIKey: "g-secret"}
	s.Conversation = models.NewConversation("sys")
	s.Conversation.Commit("q", "a")

	sum := s.Summarize()
	assert.True(t, sum.HasGeminiKey)
	assert.False(t, sum.HasSearchKey)
	assert.Equal(t, 3, sum.ConversationTurns)
	assert.NotNil(t, sum.ReferenceDocuments)
	assert.False(t, sum.HasDraft)
}

func TestStore_CreateGetDelete(t *testing.T) {
	st := NewStore(time.Hour, zerolog.Nop())

	s := st.Create()
	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, st.Len())

	require.NoError(t, st.Delete(s.ID))
	_, err = st.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, st.Delete(uuid.New()), ErrSessionNotFound)
}

func TestStore_SweepEvictsIdleSessions(t *testing.T) {
	st := NewStore(time.Minute, zerolog.Nop())
	idle := st.Create()
	active := st.Create()

	_, err := st.Get(active.ID)
	require.NoError(t, err)

	st.mu.Lock()
	idle.lastSeen = time.Now().Add(-2 * time.Minute)
	st.mu.Unlock()

	assert.Equal(t, 1, st.Sweep(time.Now()))
	_, err = st.Get(idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = st.Get(active.ID)
	assert.NoError(t, err)
}

func TestStore_SweepSkipsHeldSessions(t *testing.T) {
	st := NewStore(time.Minute, zerolog.Nop())
	s := st.Create()

	release, err := s.Acquire()
	require.NoError(t, err)

	assert.Equal(t, 0, st.Sweep(time.Now().Add(2*time.Minute)))
	_, err = st.Get(s.ID)
	require.NoError(t, err, "a session in use survives the sweep")

	release()
	assert.Equal(t, 1, st.Sweep(time.Now().Add(2*time.Minute)))
	_, err = st.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.Acquire()
	assert.NoError(t, err, "sweeping leaves the lock released")
}

func TestStore_RunStopsWithContext(t *testing.T) {
	st := NewStore(time.Minute, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		st.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
