package stores

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agribridge/agribridge/models"
	"github.com/agribridge/agribridge/storage"
)

// PostsKey is the logical storage key for the shared post collection.
const PostsKey = "agri_posts_v1"

// PostStore manages the shared post collection. Every operation reads the
// whole collection, mutates it and writes it back under one mutex; there are
// no partial updates.
type PostStore struct {
	kv storage.KV
	mu sync.Mutex
}

// NewPostStore creates a store over the given backend.
func NewPostStore(kv storage.KV) *PostStore {
	return &PostStore{kv: kv}
}

// Create inserts a new open post at the head of the collection.
func (s *PostStore) Create(author models.SessionRecord, title, description string) (models.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Post{}, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}

	post := models.Post{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedAt:   now(),
		UpdatedAt:   nil,
		AuthorType:  models.RoleFarmer,
		AuthorName:  author.Name,
		AuthorEmail: author.Email,
		Resolved:    false,
		Responses:   []models.Response{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.readLocked()
	posts = append([]models.Post{post}, posts...)
	if err := s.writeLocked(posts); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// Update replaces title and description of the author's own post and stamps
// updatedAt. CreatedAt never changes.
func (s *PostStore) Update(id string, author models.SessionRecord, title, description string) (models.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Post{}, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.readLocked()
	idx := indexOf(posts, id)
	if idx < 0 {
		return models.Post{}, ErrNotFound
	}
	if posts[idx].AuthorEmail != author.Email {
		return models.Post{}, ErrForbidden
	}

	posts[idx].Title = title
	posts[idx].Description = strings.TrimSpace(description)
	posts[idx].UpdatedAt = ptr(now())
	if err := s.writeLocked(posts); err != nil {
		return models.Post{}, err
	}
	return posts[idx], nil
}

// Delete removes the author's own post from the collection.
func (s *PostStore) Delete(id string, author models.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.readLocked()
	idx := indexOf(posts, id)
	if idx < 0 {
		return ErrNotFound
	}
	if posts[idx].AuthorEmail != author.Email {
		return ErrForbidden
	}

	posts = append(posts[:idx], posts[idx+1:]...)
	return s.writeLocked(posts)
}

// AppendResponse appends an expert reply to the post and marks it resolved;
// reply and resolve are one coupled action.
func (s *PostStore) AppendResponse(id string, responder models.SessionRecord, text string) (models.Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Response{}, fmt.Errorf("%w: response text cannot be empty", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.readLocked()
	idx := indexOf(posts, id)
	if idx < 0 {
		return models.Response{}, ErrNotFound
	}

	resp := models.Response{
		ID:      uuid.NewString(),
		By:      responder.Name,
		ByEmail: responder.Email,
		Text:    text,
		At:      now(),
	}
	posts[idx].Responses = append(posts[idx].Responses, resp)
	posts[idx].Resolved = true
	posts[idx].UpdatedAt = ptr(now())
	if err := s.writeLocked(posts); err != nil {
		return models.Response{}, err
	}
	return resp, nil
}

// SetResolved sets the resolved flag. Idempotent; setting false reopens a
// post, which the dashboards never do but the transition is kept available.
func (s *PostStore) SetResolved(id string, resolved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.readLocked()
	idx := indexOf(posts, id)
	if idx < 0 {
		return ErrNotFound
	}
	if posts[idx].Resolved == resolved {
		return nil
	}
	posts[idx].Resolved = resolved
	posts[idx].UpdatedAt = ptr(now())
	return s.writeLocked(posts)
}

// ListForFarmer returns the farmer's own posts, newest first.
func (s *PostStore) ListForFarmer(email string) []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Post
	for _, p := range s.readLocked() {
		if p.AuthorType == models.RoleFarmer && p.AuthorEmail == email {
			out = append(out, p)
		}
	}
	return out
}

// ListAllFarmerPosts returns every farmer-authored post for the expert view.
// Records tagged with any other author type are skipped rather than surfaced.
func (s *PostStore) ListAllFarmerPosts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Post
	for _, p := range s.readLocked() {
		if p.AuthorType == models.RoleFarmer {
			out = append(out, p)
		}
	}
	return out
}

// Stats aggregates dashboard counters over the farmer-authored posts.
func (s *PostStore) Stats() (total, open, resolved, responses int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.readLocked() {
		if p.AuthorType != models.RoleFarmer {
			continue
		}
		total++
		if p.Resolved {
			resolved++
		} else {
			open++
		}
		responses += len(p.Responses)
	}
	return
}

func (s *PostStore) readLocked() []models.Post {
	b, err := s.kv.Get(PostsKey)
	if err != nil {
		return []models.Post{}
	}
	var posts []models.Post
	if err := json.Unmarshal(b, &posts); err != nil {
		return []models.Post{}
	}
	return posts
}

func (s *PostStore) writeLocked(posts []models.Post) error {
	b, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := s.kv.Set(PostsKey, b); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func indexOf(posts []models.Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func ptr(s string) *string { return &s }
