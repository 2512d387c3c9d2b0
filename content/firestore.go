package content

import (
	"context"
	"time"

	fsSDK "cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// FirestoreStore keeps the three collections in Cloud Firestore, using the
// same field names the site's documents have always had.
type FirestoreStore struct {
	*fsSDK.Client
	projectID string
}

// NewFirestoreStore creates a firestore client for projectID. credentialsFile
// may be empty to use application default credentials or the emulator.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, errors.New("firestore project id is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	cli, err := fsSDK.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create firestore client")
	}
	return &FirestoreStore{Client: cli, projectID: projectID}, nil
}

// Close closes the firestore client.
func (s *FirestoreStore) Close() error {
	return s.Client.Close()
}

func listDocs[T any](ctx context.Context, q fsSDK.Query, setID func(*T, string)) ([]T, error) {
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.DataTo(&v); err != nil {
			return nil, errors.Wrapf(err, "decode %s", d.Ref.Path)
		}
		setID(&v, d.Ref.ID)
		out = append(out, v)
	}
	return out, nil
}

// addDoc inserts v and returns the new document id and the commit time,
// which is the value the serverTimestamp field resolved to.
func (s *FirestoreStore) addDoc(ctx context.Context, col string, v any) (string, time.Time, error) {
	ref, wr, err := s.Collection(col).Add(ctx, v)
	if err != nil {
		return "", time.Time{}, errors.Wrapf(err, "add to %s", col)
	}
	return ref.ID, wr.UpdateTime.UTC(), nil
}

func (s *FirestoreStore) deleteDoc(ctx context.Context, col, id string) error {
	if id == "" {
		return nil
	}
	_, err := s.Collection(col).Doc(id).Delete(ctx)
	return errors.Wrapf(err, "delete %s/%s", col, id)
}

func (s *FirestoreStore) ListPosts(ctx context.Context) ([]Post, error) {
	q := s.Collection(PostsCollection).OrderBy("date", fsSDK.Desc)
	posts, err := listDocs(ctx, q, func(p *Post, id string) { p.ID = id })
	return posts, errors.Wrap(err, "list posts")
}

func (s *FirestoreStore) CreatePost(ctx context.Context, p Post) (Post, error) {
	if err := p.Validate(); err != nil {
		return Post{}, err
	}
	p.CreatedAt = time.Time{}
	id, created, err := s.addDoc(ctx, PostsCollection, p)
	if err != nil {
		return Post{}, err
	}
	p.ID, p.CreatedAt = id, created
	return p, nil
}

func (s *FirestoreStore) DeletePost(ctx context.Context, id string) error {
	return s.deleteDoc(ctx, PostsCollection, id)
}

func (s *FirestoreStore) ListPhotos(ctx context.Context) ([]Photo, error) {
	q := s.Collection(PhotosCollection).OrderBy("createdAt", fsSDK.Desc)
	photos, err := listDocs(ctx, q, func(p *Photo, id string) { p.ID = id })
	return photos, errors.Wrap(err, "list photos")
}

func (s *FirestoreStore) CreatePhoto(ctx context.Context, p Photo) (Photo, error) {
	if err := p.Validate(); err != nil {
		return Photo{}, err
	}
	p.CreatedAt = time.Time{}
	id, created, err := s.addDoc(ctx, PhotosCollection, p)
	if err != nil {
		return Photo{}, err
	}
	p.ID, p.CreatedAt = id, created
	return p, nil
}

func (s *FirestoreStore) DeletePhoto(ctx context.Context, id string) error {
	return s.deleteDoc(ctx, PhotosCollection, id)
}

// ListPublications needs a composite index on (year desc, createdAt desc).
func (s *FirestoreStore) ListPublications(ctx context.Context) ([]Publication, error) {
	q := s.Collection(PublicationsCollection).
		OrderBy("year", fsSDK.Desc).
		OrderBy("createdAt", fsSDK.Desc)
	pubs, err := listDocs(ctx, q, func(p *Publication, id string) { p.ID = id })
	return pubs, errors.Wrap(err, "list publications")
}

func (s *FirestoreStore) CreatePublication(ctx context.Context, p Publication) (Publication, error) {
	if err := p.Validate(); err != nil {
		return Publication{}, err
	}
	p.CreatedAt = time.Time{}
	id, created, err := s.addDoc(ctx, PublicationsCollection, p)
	if err != nil {
		return Publication{}, err
	}
	p.ID, p.CreatedAt = id, created
	return p, nil
}

func (s *FirestoreStore) DeletePublication(ctx context.Context, id string) error {
	return s.deleteDoc(ctx, PublicationsCollection, id)
}
