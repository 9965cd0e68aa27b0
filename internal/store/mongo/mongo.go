// Package mongo stores users and messages in a MongoDB database.
//
// Documents are flat records keyed by the generated id (_id). Listings are
// served by an index on (userId, date) and one on date. Emails are matched
// under a case-insensitive collation that the email index shares.
package mongo

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"minitwitql/internal/models"
	"minitwitql/internal/store"
)

// emailCollation compares strings ignoring case (strength 2).
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

// Options selects the database and collection names.
type Options struct {
	URI      string
	Database string
	// Users defaults to "users".
	Users string
	// Messages defaults to "messages"; deployments of the tweet variant use "tweets".
	Messages string
}

func (o *Options) withDefaults() {
	if o.Database == "" {
		o.Database = "minitwitql"
	}
	if o.Users == "" {
		o.Users = "users"
	}
	if o.Messages == "" {
		o.Messages = "messages"
	}
}

// Store implements store.Store against a MongoDB deployment.
type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	messages *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Open connects to the deployment at opts.URI and ensures the indexes exist.
func Open(ctx context.Context, opts Options) (*Store, error) {
	opts.withDefaults()
	client, err := mongo.Connect(options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(err, "mongo: connect")
	}
	db := client.Database(opts.Database)
	s := &Store{
		client:   client,
		users:    db.Collection(opts.Users),
		messages: db.Collection(opts.Messages),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email").SetCollation(emailCollation),
	})
	if err != nil {
		return errors.Wrap(err, "mongo: create users index")
	}
	_, err = s.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetName("date")},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("userId_date"),
		},
	})
	return errors.Wrap(err, "mongo: create messages indexes")
}

// Users returns the users collection.
func (s *Store) Users() store.Users { return userStore{s.users} }

// Messages returns the messages collection.
func (s *Store) Messages() store.Messages { return messageStore{s.messages} }

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return errors.Wrap(s.client.Ping(ctx, readpref.Primary()), "mongo: ping")
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

type userStore struct{ c *mongo.Collection }

func (u userStore) Create(ctx context.Context, user models.User) error {
	_, err := u.c.InsertOne(ctx, user)
	return errors.Wrap(err, "mongo: insert user")
}

func (u userStore) ByID(ctx context.Context, id string) (models.User, error) {
	return u.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (u userStore) ByEmail(ctx context.Context, email string) (models.User, error) {
	return u.findOne(ctx, bson.D{{Key: "email", Value: email}},
		options.FindOne().SetCollation(emailCollation))
}

func (u userStore) findOne(ctx context.Context, filter bson.D, opts ...options.Lister[options.FindOneOptions]) (models.User, error) {
	var user models.User
	err := u.c.FindOne(ctx, filter, opts...).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, store.ErrNotFound
	}
	if err != nil {
		return models.User{}, errors.Wrap(err, "mongo: find user")
	}
	return user, nil
}

type messageStore struct{ c *mongo.Collection }

func (m messageStore) Create(ctx context.Context, msg models.Message) error {
	_, err := m.c.InsertOne(ctx, msg)
	return errors.Wrap(err, "mongo: insert message")
}

func (m messageStore) ByID(ctx context.Context, id string) (models.Message, error) {
	var msg models.Message
	err := m.c.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Message{}, store.ErrNotFound
	}
	if err != nil {
		return models.Message{}, errors.Wrap(err, "mongo: find message")
	}
	return msg, nil
}

func (m messageStore) Delete(ctx context.Context, id string) error {
	res, err := m.c.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return errors.Wrap(err, "mongo: delete message")
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (m messageStore) List(ctx context.Context, q store.Query) ([]models.Message, error) {
	opts := options.Find().SetSort(listSort())
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	cur, err := m.c.Find(ctx, listFilter(q), opts)
	if err != nil {
		return nil, errors.Wrap(err, "mongo: find messages")
	}
	messages := []models.Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, errors.Wrap(err, "mongo: decode messages")
	}
	return messages, nil
}

// listFilter renders the equality and range parts of q.
func listFilter(q store.Query) bson.D {
	filter := bson.D{}
	if q.UserID != "" {
		filter = append(filter, bson.E{Key: "userId", Value: q.UserID})
	}
	if q.After != "" {
		filter = append(filter, bson.E{Key: "date", Value: bson.D{{Key: "$gt", Value: q.After}}})
	}
	return filter
}

func listSort() bson.D {
	return bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}
}
