package stores

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agribridge/agribridge/models"
	"github.com/agribridge/agribridge/storage"
)

var (
	farmer = models.SessionRecord{Name: "Farmer Demo", Email: "farmer@example.com", Type: models.RoleFarmer}
	expert = models.SessionRecord{Name: "Expert Demo", Email: "expert@example.com", Type: models.RoleExpert}
)

func TestPostStore_CreateDefaults(t *testing.T) {
	s := NewPostStore(storage.NewMemory())

	post, err := s.Create(farmer, "  Pest issue  ", "aphids on tomato")
	require.NoError(t, err)
	require.Equal(t, "Pest issue", post.Title)
	require.Equal(t, models.RoleFarmer, post.AuthorType)
	require.Equal(t, farmer.Email, post.AuthorEmail)
	require.False(t, post.Resolved)
	require.Nil(t, post.UpdatedAt)
	require.Empty(t, post.Responses)
	require.NotEmpty(t, post.ID)
	require.NotEmpty(t, post.CreatedAt)

	_, err = s.Create(farmer, "   ", "no title")
	require.ErrorIs(t, err, ErrValidation)
}

func TestPostStore_NewestFirst(t *testing.T) {
	s := NewPostStore(storage.NewMemory())

	first, err := s.Create(farmer, "first", "")
	require.NoError(t, err)
	second, err := s.Create(farmer, "second", "")
	require.NoError(t, err)

	posts := s.ListForFarmer(farmer.Email)
	require.Len(t, posts, 2)
	require.Equal(t, second.ID, posts[0].ID)
	require.Equal(t, first.ID, posts[1].ID)
}

func TestPostStore_UpdateStampsUpdatedAtOnly(t *testing.T) {
	s := NewPostStore(storage.NewMemory())

	post, err := s.Create(farmer, "old title", "desc")
	require.NoError(t, err)

	updated, err := s.Update(post.ID, farmer, "new title", "desc")
	require.NoError(t, err)
	require.Equal(t, "new title", updated.Title)
	require.NotNil(t, updated.UpdatedAt)
	require.Equal(t, post.CreatedAt, updated.CreatedAt)
}

func TestPostStore_OwnershipEnforced(t *testing.T) {
	s := NewPostStore(storage.NewMemory())

	post, err := s.Create(farmer, "mine", "")
	require.NoError(t, err)

	other := models.SessionRecord{Name: "Other", Email: "other@example.com", Type: models.RoleFarmer}
	_, err = s.Update(post.ID, other, "stolen", "")
	require.ErrorIs(t, err, ErrForbidden)

	err = s.Delete(post.ID, other)
	require.ErrorIs(t, err, ErrForbidden)

	// The owner still can.
	require.NoError(t, s.Delete(post.ID, farmer))
	require.Empty(t, s.ListForFarmer(farmer.Email))
}

func TestPostStore_DeleteMissingLeavesCollectionUnchanged(t *testing.T) {
	s := NewPostStore(storage.NewMemory())

	_, err := s.Create(farmer, "keep me", "")
	require.NoError(t, err)

	err = s.Delete("no-such-id", farmer)
	require.ErrorIs(t, err, ErrNotFound)
	require.Len(t, s.ListForFarmer(farmer.Email), 1)
}

func TestPostStore_AppendResponseResolves(t *testing.T) {
	s := NewPostStore(storage.NewMemory())

	post, err := s.Create(farmer, "Pest issue", "")
	require.NoError(t, err)

	resp, err := s.AppendResponse(post.ID, expert, "apply neem oil")
	require.NoError(t, err)
	require.Equal(t, "apply neem oil", resp.Text)
	require.Equal(t, expert.Name, resp.By)
	require.Equal(t, expert.Email, resp.ByEmail)

	posts := s.ListForFarmer(farmer.Email)
	require.Len(t, posts, 1)
	require.True(t, posts[0].Resolved)
	require.Len(t, posts[0].Responses, 1)
	require.Equal(t, "apply neem oil", posts[0].Responses[0].Text)

	// A second response lands last, order preserved.
	_, err = s.AppendResponse(post.ID, expert, "also rotate crops")
	require.NoError(t, err)
	posts = s.ListForFarmer(farmer.Email)
	require.Len(t, posts[0].Responses, 2)
	require.Equal(t, "also rotate crops", posts[0].Responses[1].Text)

	_, err = s.AppendResponse(post.ID, expert, "   ")
	require.ErrorIs(t, err, ErrValidation)

	_, err = s.AppendResponse("missing", expert, "text")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostStore_SetResolved(t *testing.T) {
	s := NewPostStore(storage.NewMemory())

	post, err := s.Create(farmer, "resolve me", "")
	require.NoError(t, err)

	require.NoError(t, s.SetResolved(post.ID, true))
	require.True(t, s.ListForFarmer(farmer.Email)[0].Resolved)

	// Idempotent.
	require.NoError(t, s.SetResolved(post.ID, true))

	// Reopening is allowed.
	require.NoError(t, s.SetResolved(post.ID, false))
	require.False(t, s.ListForFarmer(farmer.Email)[0].Resolved)

	require.ErrorIs(t, s.SetResolved("missing", true), ErrNotFound)
}

func TestPostStore_ExpertViewSkipsForeignAuthorTypes(t *testing.T) {
	kv := storage.NewMemory()
	s := NewPostStore(kv)

	_, err := s.Create(farmer, "legit", "")
	require.NoError(t, err)

	// Inject a record with an unexpected author type directly into storage.
	posts := s.ListAllFarmerPosts()
	alien := posts[0]
	alien.ID = "alien"
	alien.AuthorType = "bot"
	b, err := json.Marshal(append(posts, alien))
	require.NoError(t, err)
	require.NoError(t, kv.Set(PostsKey, b))

	visible := s.ListAllFarmerPosts()
	require.Len(t, visible, 1)
	require.Equal(t, "legit", visible[0].Title)
}

func TestPostStore_Stats(t *testing.T) {
	s := NewPostStore(storage.NewMemory())

	a, err := s.Create(farmer, "a", "")
	require.NoError(t, err)
	_, err = s.Create(farmer, "b", "")
	require.NoError(t, err)

	_, err = s.AppendResponse(a.ID, expert, "done")
	require.NoError(t, err)

	total, open, resolved, responses := s.Stats()
	require.Equal(t, 2, total)
	require.Equal(t, 1, open)
	require.Equal(t, 1, resolved)
	require.Equal(t, 1, responses)
}
