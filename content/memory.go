package content

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Option configures the memory and sqlite backends.
type Option func(*storeOptions)

type storeOptions struct {
	now Clock
}

// WithClock overrides the clock used to stamp CreatedAt.
func WithClock(c Clock) Option {
	return func(o *storeOptions) {
		o.now = c
	}
}

func buildOptions(opts []Option) storeOptions {
	o := storeOptions{now: utcNow}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// MemoryStore keeps everything in process memory. It backs tests and the
// read-only seed fallback.
type MemoryStore struct {
	mu           sync.RWMutex
	posts        map[string]Post
	photos       map[string]Photo
	publications map[string]Publication
	now          Clock
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		posts:        make(map[string]Post),
		photos:       make(map[string]Photo),
		publications: make(map[string]Publication),
		now:          o.now,
	}
}

func (s *MemoryStore) ListPosts(ctx context.Context) ([]Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	s.mu.RUnlock()
	SortPosts(out)
	return out, nil
}

func (s *MemoryStore) CreatePost(ctx context.Context, p Post) (Post, error) {
	if err := p.Validate(); err != nil {
		return Post{}, err
	}
	if err := ctx.Err(); err != nil {
		return Post{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()
	s.mu.Lock()
	s.posts[p.ID] = p
	s.mu.Unlock()
	return p, nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.posts, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListPhotos(ctx context.Context) ([]Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Photo, 0, len(s.photos))
	for _, p := range s.photos {
		out = append(out, p)
	}
	s.mu.RUnlock()
	SortPhotos(out)
	return out, nil
}

func (s *MemoryStore) CreatePhoto(ctx context.Context, p Photo) (Photo, error) {
	if err := p.Validate(); err != nil {
		return Photo{}, err
	}
	if err := ctx.Err(); err != nil {
		return Photo{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()
	s.mu.Lock()
	s.photos[p.ID] = p
	s.mu.Unlock()
	return p, nil
}

func (s *MemoryStore) DeletePhoto(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.photos, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListPublications(ctx context.Context) ([]Publication, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Publication, 0, len(s.publications))
	for _, p := range s.publications {
		out = append(out, p)
	}
	s.mu.RUnlock()
	SortPublications(out)
	return out, nil
}

func (s *MemoryStore) CreatePublication(ctx context.Context, p Publication) (Publication, error) {
	if err := p.Validate(); err != nil {
		return Publication{}, err
	}
	if err := ctx.Err(); err != nil {
		return Publication{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()
	s.mu.Lock()
	s.publications[p.ID] = p
	s.mu.Unlock()
	return p, nil
}

func (s *MemoryStore) DeletePublication(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.publications, id)
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
