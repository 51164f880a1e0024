package store

import (
	"context"
	"time"

	"github.com/Luismorlan/coursehub/model"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*

mongoDocument is the stored shape of a document, one collection per kind.

ID: the entity uuid
Fields: scalar fields keyed by name
Sets: lists keyed by name, maintained with $addToSet and $pull
*/
type mongoDocument struct {
	ID        string              `bson:"_id"`
	Fields    map[string]string   `bson:"fields"`
	Sets      map[string][]string `bson:"sets"`
	CreatedAt time.Time           `bson:"created_at"`
}

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo dials uri and pings the primary.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "fail to connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "fail to ping mongo")
	}
	return client, nil
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

func (s *MongoStore) collection(kind model.Kind) *mongo.Collection {
	return s.db.Collection(string(kind) + "s")
}

func (s *MongoStore) Get(ctx context.Context, kind model.Kind, id string) (*model.Document, error) {
	if err := validateKey(kind, id); err != nil {
		return nil, err
	}
	var stored mongoDocument
	err := s.collection(kind).FindOne(ctx, bson.M{"_id": id}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(kind, id)
	}
	if err != nil {
		return nil, unavailable("get", err)
	}
	return normalize(&model.Document{Kind: kind, ID: id, Fields: stored.Fields, Sets: stored.Sets}), nil
}

func (s *MongoStore) Create(ctx context.Context, doc *model.Document) error {
	if err := validateDocument(doc); err != nil {
		return err
	}
	d := normalize(doc.Clone())
	for list, members := range d.Sets {
		d.Sets[list] = model.NewIDSet(members...).Slice()
	}
	_, err := s.collection(doc.Kind).InsertOne(ctx, mongoDocument{
		ID:        d.ID,
		Fields:    d.Fields,
		Sets:      d.Sets,
		CreatedAt: time.Now(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrapf(ErrAlreadyExists, "%s %s", doc.Kind, doc.ID)
	}
	return unavailable("create", err)
}

func (s *MongoStore) Delete(ctx context.Context, kind model.Kind, id string) error {
	if err := validateKey(kind, id); err != nil {
		return err
	}
	_, err := s.collection(kind).DeleteOne(ctx, bson.M{"_id": id})
	return unavailable("delete", err)
}

func (s *MongoStore) SetField(ctx context.Context, kind model.Kind, id string, field string, value string) error {
	if err := validateScalarField(kind, id, field); err != nil {
		return err
	}
	return s.update(ctx, "set field", kind, id, bson.M{"$set": bson.M{"fields." + field: value}})
}

func (s *MongoStore) AddToSet(ctx context.Context, kind model.Kind, id string, field string, member string) error {
	if err := validateSetField(kind, id, field, member); err != nil {
		return err
	}
	return s.update(ctx, "add to set", kind, id, bson.M{"$addToSet": bson.M{"sets." + field: member}})
}

func (s *MongoStore) RemoveFromSet(ctx context.Context, kind model.Kind, id string, field string, member string) error {
	if err := validateSetField(kind, id, field, member); err != nil {
		return err
	}
	return s.update(ctx, "remove from set", kind, id, bson.M{"$pull": bson.M{"sets." + field: member}})
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *MongoStore) update(ctx context.Context, op string, kind model.Kind, id string, update bson.M) error {
	res, err := s.collection(kind).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return unavailable(op, err)
	}
	if res.MatchedCount == 0 {
		return notFound(kind, id)
	}
	return nil
}
