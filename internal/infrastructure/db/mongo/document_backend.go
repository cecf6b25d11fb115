package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pcparts/marketplace/internal/core/domain"
)

const (
	DefaultCollection = "documents"
	DefaultDocumentID = "marketplace"
)

// DocumentBackend stores the whole marketplace Document as one MongoDB
// document and overwrites it on every save (ReplaceOne with upsert).
type DocumentBackend struct {
	coll *mongo.Collection
	id   string
	now  func() time.Time
}

func NewDocumentBackend(db *mongo.Database, collection, documentID string) *DocumentBackend {
	if collection == "" {
		collection = DefaultCollection
	}
	if documentID == "" {
		documentID = DefaultDocumentID
	}
	return &DocumentBackend{coll: db.Collection(collection), id: documentID, now: time.Now}
}

type mongoDocument struct {
	ID        string        `bson:"_id"`
	Users     []domain.User `bson:"users"`
	Parts     []domain.Part `bson:"parts"`
	UpdatedAt int64         `bson:"updated_at"`
}

func toMongoDocument(id string, doc *domain.Document, at time.Time) mongoDocument {
	doc.Normalize()
	return mongoDocument{ID: id, Users: doc.Users, Parts: doc.Parts, UpdatedAt: at.Unix()}
}

func (m mongoDocument) toDomain() *domain.Document {
	doc := &domain.Document{Users: m.Users, Parts: m.Parts}
	doc.Normalize()
	return doc
}

// Fetch returns an empty Document when nothing has been stored yet.
func (r *DocumentBackend) Fetch(ctx context.Context) (*domain.Document, error) {
	var md mongoDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": r.id}).Decode(&md)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.EmptyDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", r.id, err)
	}
	return md.toDomain(), nil
}

func (r *DocumentBackend) Replace(ctx context.Context, doc *domain.Document) error {
	md := toMongoDocument(r.id, doc, r.now())
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": r.id}, md, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace document %s: %w", r.id, err)
	}
	return nil
}

func (r *DocumentBackend) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
