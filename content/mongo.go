package content

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoConnectTimeout = 10 * time.Second

// MongoStore keeps the three collections in a MongoDB database. Identities
// are ObjectID hex strings.
type MongoStore struct {
	cli *mongo.Client
	db  *mongo.Database
	now Clock
}

// mongoDoc decodes a record together with its _id.
type mongoDoc[T any] struct {
	ID   primitive.ObjectID `bson:"_id"`
	Body T                  `bson:",inline"`
}

// NewMongoStore connects to uri and pings the primary before returning.
func NewMongoStore(ctx context.Context, uri, database string, opts ...Option) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		database = "folio"
	}
	o := buildOptions(opts)

	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()
	cli, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := cli.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}
	return &MongoStore{cli: cli, db: cli.Database(database), now: o.now}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()
	return s.cli.Disconnect(ctx)
}

func findAll[T any](ctx context.Context, col *mongo.Collection, sort bson.D, setID func(*T, string)) ([]T, error) {
	cur, err := col.Find(ctx, bson.D{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	var docs []mongoDoc[T]
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v := d.Body
		setID(&v, d.ID.Hex())
		out = append(out, v)
	}
	return out, nil
}

func (s *MongoStore) insert(ctx context.Context, col string, v any) (string, error) {
	res, err := s.db.Collection(col).InsertOne(ctx, v)
	if err != nil {
		return "", errors.Wrapf(err, "insert into %s", col)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.Errorf("unexpected %s id type %T", col, res.InsertedID)
	}
	return oid.Hex(), nil
}

// remove deletes by id. Ids that are not valid ObjectIDs cannot exist in the
// collection, so they are treated as already deleted.
func (s *MongoStore) remove(ctx context.Context, col, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	_, err = s.db.Collection(col).DeleteOne(ctx, bson.M{"_id": oid})
	return errors.Wrapf(err, "delete %s/%s", col, id)
}

// stamp returns the creation time truncated to the millisecond precision
// BSON dates keep, so the returned record equals what a later list decodes.
func (s *MongoStore) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *MongoStore) ListPosts(ctx context.Context) ([]Post, error) {
	posts, err := findAll(ctx, s.db.Collection(PostsCollection),
		bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}},
		func(p *Post, id string) { p.ID = id })
	return posts, errors.Wrap(err, "list posts")
}

func (s *MongoStore) CreatePost(ctx context.Context, p Post) (Post, error) {
	if err := p.Validate(); err != nil {
		return Post{}, err
	}
	p.CreatedAt = s.stamp()
	id, err := s.insert(ctx, PostsCollection, p)
	if err != nil {
		return Post{}, err
	}
	p.ID = id
	return p, nil
}

func (s *MongoStore) DeletePost(ctx context.Context, id string) error {
	return s.remove(ctx, PostsCollection, id)
}

func (s *MongoStore) ListPhotos(ctx context.Context) ([]Photo, error) {
	photos, err := findAll(ctx, s.db.Collection(PhotosCollection),
		bson.D{{Key: "createdAt", Value: -1}},
		func(p *Photo, id string) { p.ID = id })
	return photos, errors.Wrap(err, "list photos")
}

func (s *MongoStore) CreatePhoto(ctx context.Context, p Photo) (Photo, error) {
	if err := p.Validate(); err != nil {
		return Photo{}, err
	}
	p.CreatedAt = s.stamp()
	id, err := s.insert(ctx, PhotosCollection, p)
	if err != nil {
		return Photo{}, err
	}
	p.ID = id
	return p, nil
}

func (s *MongoStore) DeletePhoto(ctx context.Context, id string) error {
	return s.remove(ctx, PhotosCollection, id)
}

func (s *MongoStore) ListPublications(ctx context.Context) ([]Publication, error) {
	pubs, err := findAll(ctx, s.db.Collection(PublicationsCollection),
		bson.D{{Key: "year", Value: -1}, {Key: "createdAt", Value: -1}},
		func(p *Publication, id string) { p.ID = id })
	return pubs, errors.Wrap(err, "list publications")
}

func (s *MongoStore) CreatePublication(ctx context.Context, p Publication) (Publication, error) {
	if err := p.Validate(); err != nil {
		return Publication{}, err
	}
	p.CreatedAt = s.stamp()
	id, err := s.insert(ctx, PublicationsCollection, p)
	if err != nil {
		return Publication{}, err
	}
	p.ID = id
	return p, nil
}

func (s *MongoStore) DeletePublication(ctx context.Context, id string) error {
	return s.remove(ctx, PublicationsCollection, id)
}
