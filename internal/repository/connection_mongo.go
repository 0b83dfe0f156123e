package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathima-sithara/connect-service/internal/apperr"
	"github.com/fathima-sithara/connect-service/internal/models"
)

// connectionDoc adds the sorted pair key used by the unique index, so that
// only one edge can ever exist per user pair regardless of direction.
type connectionDoc struct {
	models.Connection `bson:",inline"`
	Pair              string `bson:"pair"`
}

type MongoConnectionRepository struct {
	coll *mongo.Collection
}

func NewMongoConnectionRepository(coll *mongo.Collection) *MongoConnectionRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "pair", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("pair_unique"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &MongoConnectionRepository{coll: coll}
}

func (r *MongoConnectionRepository) FindBetween(ctx context.Context, a, b string) (*models.Connection, error) {
	var doc connectionDoc
	if err := r.coll.FindOne(ctx, bson.M{"pair": pairKey(a, b)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	conn := doc.Connection
	return &conn, nil
}

func (r *MongoConnectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	now := time.Now().UTC()
	conn.ID = primitive.NewObjectID().Hex()
	conn.CreatedAt = now
	conn.UpdatedAt = now
	doc := connectionDoc{Connection: *conn, Pair: pairKey(conn.Requester, conn.Recipient)}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *MongoConnectionRepository) Accept(ctx context.Context, requester, recipient string) (*models.Connection, error) {
	filter := bson.M{
		"requester": requester,
		"recipient": recipient,
		"status":    models.ConnectionPending,
	}
	update := bson.M{"$set": bson.M{
		"status":     models.ConnectionAccepted,
		"updated_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc connectionDoc
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	conn := doc.Connection
	return &conn, nil
}

func (r *MongoConnectionRepository) Delete(ctx context.Context, requester, recipient string) error {
	filter := bson.M{
		"requester": requester,
		"recipient": recipient,
		"status":    models.ConnectionPending,
	}
	var doc connectionDoc
	if err := r.coll.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return apperr.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *MongoConnectionRepository) PendingFor(ctx context.Context, recipient string) ([]*models.Connection, error) {
	filter := bson.M{"recipient": recipient, "status": models.ConnectionPending}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Connection
	for cur.Next(ctx) {
		var doc connectionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		conn := doc.Connection
		out = append(out, &conn)
	}
	return out, cur.Err()
}
