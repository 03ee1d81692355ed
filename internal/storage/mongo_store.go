package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sandeepkv93/streakd/internal/model"
)

const mongoCollection = "users"

// MongoStore provides access to the users collection, one document per uid.
type MongoStore struct {
	client *mongo.Client
	c      *mongo.Collection
}

// NewMongoStore wraps an existing database handle. Close leaves the client connected.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{c: db.Collection(mongoCollection)}
}

// OpenMongo connects to uri and owns the resulting client.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	store := NewMongoStore(client.Database(database))
	store.client = client
	return store, nil
}

func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Get(ctx context.Context, uid string) (model.UserRecord, error) {
	var doc Document
	err := s.c.FindOne(ctx, bson.M{"_id": uid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.UserRecord{}, wrapErr("get", uid, ErrNotFound)
	}
	if err != nil {
		return model.UserRecord{}, wrapErr("get", uid, err)
	}
	return doc.Record(), nil
}

func (s *MongoStore) Patch(ctx context.Context, uid string, p model.Patch) error {
	if p.IsEmpty() {
		return nil
	}
	set, err := bsonFields(p)
	if err != nil {
		return wrapErr("patch", uid, err)
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": set})
	if err != nil {
		return wrapErr("patch", uid, err)
	}
	if res.MatchedCount == 0 {
		return wrapErr("patch", uid, ErrNotFound)
	}
	return nil
}

// Init upserts with $setOnInsert only, so an existing document is left untouched.
func (s *MongoStore) Init(ctx context.Context, uid string, rec model.UserRecord) (bool, error) {
	rec.UID = uid
	raw, err := bson.Marshal(documentFrom(rec))
	if err != nil {
		return false, wrapErr("init", uid, err)
	}
	elems, err := bson.Raw(raw).Elements()
	if err != nil {
		return false, wrapErr("init", uid, err)
	}
	onInsert := make(bson.D, 0, len(elems))
	for _, e := range elems {
		if e.Key() == "_id" {
			continue
		}
		onInsert = append(onInsert, bson.E{Key: e.Key(), Value: e.Value()})
	}

	opts := options.Update().SetUpsert(true)
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$setOnInsert": onInsert}, opts)
	if err != nil {
		return false, wrapErr("init", uid, err)
	}
	return res.UpsertedCount == 1, nil
}
