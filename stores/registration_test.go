package stores

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agribridge/agribridge/models"
	"github.com/agribridge/agribridge/storage"
)

func TestRegistrationStore_AppendAndList(t *testing.T) {
	s := NewRegistrationStore(storage.NewMemory())

	rec, err := s.Append(models.RegistrationInput{
		Role:   "farmer",
		Name:   "Asha",
		Email:  "asha@example.com",
		Region: "Kerala",
	})
	require.NoError(t, err)
	require.Equal(t, "Asha", rec.Name)
	require.Equal(t, "asha@example.com", rec.Email)
	require.Equal(t, "Kerala", rec.Region)
	require.Equal(t, "farmer", rec.Role)
	require.NotZero(t, rec.ID)
	require.NotEmpty(t, rec.CreatedAt)

	all := s.ListAll()
	require.Len(t, all, 1)
	require.Equal(t, rec, all[0])
}

func TestRegistrationStore_Defaults(t *testing.T) {
	s := NewRegistrationStore(storage.NewMemory())

	rec, err := s.Append(models.RegistrationInput{Name: "Bala", Email: "bala@example.com"})
	require.NoError(t, err)
	require.Equal(t, "farmer", rec.Role)
	require.Equal(t, "", rec.Region)

	// Unknown roles fall back to farmer too.
	rec2, err := s.Append(models.RegistrationInput{Role: "admin", Name: "X", Email: "x@example.com"})
	require.NoError(t, err)
	require.Equal(t, "farmer", rec2.Role)
}

func TestRegistrationStore_ValidationLeavesStoreUntouched(t *testing.T) {
	s := NewRegistrationStore(storage.NewMemory())

	_, err := s.Append(models.RegistrationInput{Name: "", Email: "a@b.c"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = s.Append(models.RegistrationInput{Name: "A", Email: "   "})
	require.ErrorIs(t, err, ErrValidation)

	require.Empty(t, s.ListAll())
}

func TestRegistrationStore_IDsStrictlyIncreasing(t *testing.T) {
	s := NewRegistrationStore(storage.NewMemory())

	var prev int64
	for i := 0; i < 20; i++ {
		rec, err := s.Append(models.RegistrationInput{Name: "N", Email: "n@example.com"})
		require.NoError(t, err)
		require.Greater(t, rec.ID, prev)
		prev = rec.ID
	}
}

func TestRegistrationStore_ConcurrentAppendsLoseNothing(t *testing.T) {
	s := NewRegistrationStore(storage.NewMemory())

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Append(models.RegistrationInput{Name: "C", Email: "c@example.com"})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, s.ListAll(), n)
}

func TestRegistrationStore_EnsureInitialized(t *testing.T) {
	kv := storage.NewMemory()
	s := NewRegistrationStore(kv)

	require.NoError(t, s.EnsureInitialized())
	b, err := kv.Get(RegistrationsKey)
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(b))

	// Existing data is left alone.
	_, err = s.Append(models.RegistrationInput{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	require.NoError(t, s.EnsureInitialized())
	require.Len(t, s.ListAll(), 1)
}

func TestRegistrationStore_CorruptBackingReadsAsEmpty(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(RegistrationsKey, []byte("{not json")))

	s := NewRegistrationStore(kv)
	require.Empty(t, s.ListAll())

	// Appending over a corrupt blob starts a fresh collection.
	_, err := s.Append(models.RegistrationInput{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	require.Len(t, s.ListAll(), 1)
}
