package content

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// ErrDisabled is returned by Open when the configured driver is "none".
var ErrDisabled = errors.New("content store disabled")

// Store is the storage-client interface the site talks to. Every backend
// returns lists already ordered: posts by date, photos by creation time,
// publications by year then creation time, all descending.
//
// Create validates the record before touching the backend and fills in the
// store-assigned ID and CreatedAt. Delete is idempotent.
type Store interface {
	ListPosts(ctx context.Context) ([]Post, error)
	CreatePost(ctx context.Context, p Post) (Post, error)
	DeletePost(ctx context.Context, id string) error

	ListPhotos(ctx context.Context) ([]Photo, error)
	CreatePhoto(ctx context.Context, p Photo) (Photo, error)
	DeletePhoto(ctx context.Context, id string) error

	ListPublications(ctx context.Context) ([]Publication, error)
	CreatePublication(ctx context.Context, p Publication) (Publication, error)
	DeletePublication(ctx context.Context, id string) error

	Close() error
}

// StoreConfig selects and configures a backend.
type StoreConfig struct {
	// Driver is one of "sqlite" (default), "memory", "firestore", "mongo" or "none".
	Driver string `yaml:"driver"`

	// SQLitePath is the database file for the sqlite driver.
	SQLitePath string `yaml:"sqlite_path"`

	// FirestoreProject and FirestoreCredentials configure the firestore driver.
	// An empty credentials path uses application default credentials (or the
	// emulator when FIRESTORE_EMULATOR_HOST is set).
	FirestoreProject     string `yaml:"firestore_project"`
	FirestoreCredentials string `yaml:"firestore_credentials"`

	// MongoURI and MongoDatabase configure the mongo driver.
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

// Open returns the backend named by cfg.Driver.
func Open(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = "data/folio.db"
		}
		return NewSQLiteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	case "firestore":
		return NewFirestoreStore(ctx, cfg.FirestoreProject, cfg.FirestoreCredentials)
	case "mongo":
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "none":
		return nil, ErrDisabled
	default:
		return nil, errors.Errorf("unknown content driver %q", cfg.Driver)
	}
}

// Clock returns the current time. Backends that stamp CreatedAt themselves
// take one so tests can control ordering.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// SortPosts orders posts by date descending, newest creation first on ties.
func SortPosts(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date != posts[j].Date {
			return posts[i].Date > posts[j].Date
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// SortPhotos orders photos by creation time descending.
func SortPhotos(photos []Photo) {
	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].CreatedAt.After(photos[j].CreatedAt)
	})
}

// SortPublications orders publications by year, then creation time, descending.
func SortPublications(pubs []Publication) {
	sort.SliceStable(pubs, func(i, j int) bool {
		if pubs[i].Year != pubs[j].Year {
			return pubs[i].Year > pubs[j].Year
		}
		return pubs[i].CreatedAt.After(pubs[j].CreatedAt)
	})
}
