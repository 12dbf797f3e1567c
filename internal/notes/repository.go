package notes

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kungpiyaphon/note-app-api/internal/models"
)

// NoteRepository defines persistence operations for notes. Every mutating
// operation is owner-scoped: the filter carries both _id and userId so a
// non-owner request behaves exactly like a missing document.
type NoteRepository interface {
	Create(ctx context.Context, n *models.Note) (*models.Note, error)
	FindByIDAndOwner(ctx context.Context, id primitive.ObjectID, ownerID string) (*models.Note, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Note, error)
	ListRecentByOwner(ctx context.Context, ownerID string) ([]models.Note, error)
	Update(ctx context.Context, id primitive.ObjectID, ownerID string, set bson.M) (*models.Note, error)
	Delete(ctx context.Context, id primitive.ObjectID, ownerID string) (bool, error)
	Search(ctx context.Context, ownerID, query string) ([]models.Note, error)
	PublicByOwner(ctx context.Context, ownerID string) ([]models.Note, error)
}

// MongoNoteRepository implements NoteRepository using a Mongo collection
type MongoNoteRepository struct {
	col *mongo.Collection
}

func NewMongoNoteRepository(col *mongo.Collection) *MongoNoteRepository {
	return &MongoNoteRepository{col: col}
}

func (r *MongoNoteRepository) Create(ctx context.Context, n *models.Note) (*models.Note, error) {
	now := time.Now().UTC()
	n.CreatedOn = now
	n.UpdatedOn = now
	if n.Tags == nil {
		n.Tags = []string{}
	}
	res, err := r.col.InsertOne(ctx, n)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}
	return n, nil
}

func (r *MongoNoteRepository) FindByIDAndOwner(ctx context.Context, id primitive.ObjectID, ownerID string) (*models.Note, error) {
	var n models.Note
	err := r.col.FindOne(ctx, bson.M{"_id": id, "userId": ownerID}).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// ListByOwner returns the owner's notes pinned-first, newest within each group.
func (r *MongoNoteRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Note, error) {
	sort := bson.D{{Key: "isPinned", Value: -1}, {Key: "createdOn", Value: -1}}
	return r.list(ctx, bson.M{"userId": ownerID}, sort)
}

// ListRecentByOwner returns the owner's notes newest-first, then pinned.
func (r *MongoNoteRepository) ListRecentByOwner(ctx context.Context, ownerID string) ([]models.Note, error) {
	sort := bson.D{{Key: "createdOn", Value: -1}, {Key: "isPinned", Value: -1}}
	return r.list(ctx, bson.M{"userId": ownerID}, sort)
}

// Update applies $set to the owner's note and returns the updated document,
// or nil when no note matched the (id, owner) pair.
func (r *MongoNoteRepository) Update(ctx context.Context, id primitive.ObjectID, ownerID string, set bson.M) (*models.Note, error) {
	set["updatedOn"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n models.Note
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": ownerID},
		bson.M{"$set": set},
		opts,
	).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *MongoNoteRepository) Delete(ctx context.Context, id primitive.ObjectID, ownerID string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "userId": ownerID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// Search matches the query as a case-insensitive substring of title or
// content, scoped to the owner. The query is escaped so user input can't
// inject regex syntax.
func (r *MongoNoteRepository) Search(ctx context.Context, ownerID, query string) ([]models.Note, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"userId": ownerID,
		"$or": []bson.M{
			{"title": re},
			{"content": re},
		},
	}
	sort := bson.D{{Key: "isPinned", Value: -1}, {Key: "createdOn", Value: -1}}
	return r.list(ctx, filter, sort)
}

// PublicByOwner returns only notes the owner has made public, newest first.
func (r *MongoNoteRepository) PublicByOwner(ctx context.Context, ownerID string) ([]models.Note, error) {
	sort := bson.D{{Key: "createdOn", Value: -1}}
	return r.list(ctx, bson.M{"userId": ownerID, "isPublic": true}, sort)
}

func (r *MongoNoteRepository) list(ctx context.Context, filter bson.M, sort bson.D) ([]models.Note, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Note{}
	for cur.Next(ctx) {
		var n models.Note
		if err := cur.Decode(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, cur.Err()
}
