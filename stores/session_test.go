package stores

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agribridge/agribridge/models"
	"github.com/agribridge/agribridge/storage"
)

func TestSessionStore_EphemeralWinsOverDurable(t *testing.T) {
	durable := storage.NewMemory()
	s := NewSessionStore(durable)

	require.NoError(t, s.Persist(models.SessionRecord{Name: "E", Email: "e@example.com", Type: "expert"}, true))
	require.NoError(t, s.Persist(models.SessionRecord{Name: "F", Email: "f@example.com", Type: "farmer"}, false))

	rec, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, "f@example.com", rec.Email)
}

func TestSessionStore_DurableLoginClearsEphemeral(t *testing.T) {
	s := NewSessionStore(storage.NewMemory())

	require.NoError(t, s.Persist(models.SessionRecord{Email: "old@example.com", Type: "farmer"}, false))
	require.NoError(t, s.Persist(models.SessionRecord{Email: "new@example.com", Type: "expert"}, true))

	rec, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, "new@example.com", rec.Email)
}

func TestSessionStore_DurableSurvivesAsFallback(t *testing.T) {
	durable := storage.NewMemory()
	s := NewSessionStore(durable)

	require.NoError(t, s.Persist(models.SessionRecord{Email: "d@example.com", Type: "farmer"}, true))

	// A new store over the same durable tier simulates a process restart:
	// the ephemeral tier is gone, the durable session remains.
	restarted := NewSessionStore(durable)
	rec, ok := restarted.Current()
	require.True(t, ok)
	require.Equal(t, "d@example.com", rec.Email)
}

func TestSessionStore_DestroyClearsBothTiers(t *testing.T) {
	durable := storage.NewMemory()
	s := NewSessionStore(durable)

	require.NoError(t, s.Persist(models.SessionRecord{Email: "a@example.com"}, true))
	require.NoError(t, s.Persist(models.SessionRecord{Email: "b@example.com"}, false))
	require.NoError(t, s.Destroy())

	_, ok := s.Current()
	require.False(t, ok)
	_, err := durable.Get(SessionKey)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionStore_SubscribersNotified(t *testing.T) {
	s := NewSessionStore(storage.NewMemory())

	var events []*models.SessionRecord
	s.Subscribe(func(rec *models.SessionRecord) {
		events = append(events, rec)
	})

	require.NoError(t, s.Persist(models.SessionRecord{Email: "x@example.com"}, false))
	require.NoError(t, s.Destroy())

	require.Len(t, events, 2)
	require.NotNil(t, events[0])
	require.Equal(t, "x@example.com", events[0].Email)
	require.Nil(t, events[1])
}

func TestSessionStore_ExternalChangeDetected(t *testing.T) {
	durable := storage.NewMemory()
	s := NewSessionStore(durable)

	var events []*models.SessionRecord
	s.Subscribe(func(rec *models.SessionRecord) {
		events = append(events, rec)
	})

	// Another process writes the durable tier behind our back.
	b, err := json.Marshal(models.SessionRecord{Email: "other@example.com", Type: "expert"})
	require.NoError(t, err)
	require.NoError(t, durable.Set(SessionKey, b))

	s.pollDurable()
	require.Len(t, events, 1)
	require.Equal(t, "other@example.com", events[0].Email)

	// No change, no event.
	s.pollDurable()
	require.Len(t, events, 1)
}

func TestSessionStore_CorruptTierReadsAsAbsent(t *testing.T) {
	durable := storage.NewMemory()
	require.NoError(t, durable.Set(SessionKey, []byte("not json")))

	s := NewSessionStore(durable)
	_, ok := s.Current()
	require.False(t, ok)
}
