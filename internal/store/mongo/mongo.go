// Package mongo stores email records as documents in a MongoDB collection,
// keyed by store-generated ObjectIDs.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/hiver-ai/email-triage/internal/model"
	"github.com/hiver-ai/email-triage/internal/store"
)

// emailDoc is the on-disk document shape.
type emailDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Subject        string             `bson:"subject"`
	Body           string             `bson:"body"`
	From           string             `bson:"from"`
	Timestamp      time.Time          `bson:"timestamp"`
	Intent         string             `bson:"intent"`
	Summary        string             `bson:"summary"`
	AssignedTeam   string             `bson:"assigned_team"`
	ManualOverride bool               `bson:"manual_override"`
	AgentReply     *string            `bson:"agent_reply,omitempty"`
}

func (d *emailDoc) toModel() *model.Email {
	return &model.Email{
		ID:             d.ID.Hex(),
		Subject:        d.Subject,
		Body:           d.Body,
		From:           d.From,
		Timestamp:      d.Timestamp.UTC(),
		Intent:         d.Intent,
		Summary:        d.Summary,
		AssignedTeam:   d.AssignedTeam,
		ManualOverride: d.ManualOverride,
		AgentReply:     d.AgentReply,
	}
}

// Connect dials MongoDB and verifies connectivity with a primary ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo URI is empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the timestamp index used by List.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	return err
}

// New constructs a store over the given collection.
func New(client *mongo.Client, database, collection string) store.Store {
	return &mongoStore{client: client, coll: client.Database(database).Collection(collection)}
}

type mongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func (s *mongoStore) Emails() store.Emails { return &emails{coll: s.coll} }

// HealthPing implements health.HealthPinger.
func (s *mongoStore) HealthPing(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client.
func (s *mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type emails struct{ coll *mongo.Collection }

func (e *emails) Create(ctx context.Context, m *model.Email) (*model.Email, error) {
	doc := emailDoc{
		Subject:      m.Subject,
		Body:         m.Body,
		From:         m.From,
		Timestamp:    m.Timestamp.UTC(),
		Intent:       m.Intent,
		Summary:      m.Summary,
		AssignedTeam: m.AssignedTeam,
	}
	res, err := e.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return e.findOne(ctx, oid)
}

func (e *emails) GetByID(ctx context.Context, id string) (*model.Email, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	return e.findOne(ctx, oid)
}

func (e *emails) List(ctx context.Context, limit int) ([]*model.Email, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := e.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []emailDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return toModels(docs), nil
}

func (e *emails) Sample(ctx context.Context) (*model.Email, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: 1}}}},
	}
	cur, err := e.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var docs []emailDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, model.ErrNotFound
	}
	return docs[0].toModel(), nil
}

func (e *emails) Reassign(ctx context.Context, id, team string) (*model.Email, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	var doc emailDoc
	err = e.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"assigned_team": team, "manual_override": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// SetReply only fails on a missing document. An unchanged value matches
// without modifying and is accepted.
func (e *emails) SetReply(ctx context.Context, id, reply string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrNotFound
	}
	res, err := e.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"agent_reply": reply}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (e *emails) findOne(ctx context.Context, oid primitive.ObjectID) (*model.Email, error) {
	var doc emailDoc
	err := e.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func toModels(docs []emailDoc) []*model.Email {
	out := make([]*model.Email, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out
}
