// repositories/content_repository.go
package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kanya01/freqspace-backend/config"
	"github.com/kanya01/freqspace-backend/models"
	"github.com/kanya01/freqspace-backend/services"
)

// ContentRepository is the MongoDB implementation of the content
// persistence contract.
type ContentRepository struct {
	collection *mongo.Collection
}

func NewContentRepository(db *mongo.Client) *ContentRepository {
	return &ContentRepository{
		collection: config.GetCollection(db, "content"),
	}
}

func (r *ContentRepository) Insert(ctx context.Context, item *models.ContentItem) error {
	_, err := r.collection.InsertOne(ctx, item)
	return err
}

// FindByID returns (nil, nil) for a missing id; the service layer maps
// that to NotFound.
func (r *ContentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ContentItem, error) {
	var item models.ContentItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ContentRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	return err
}

func (r *ContentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// List applies the visibility rules and returns a newest-first page plus
// the total match count.
func (r *ContentRepository) List(ctx context.Context, filter services.ContentFilter, page, limit int) ([]models.ContentItem, int64, error) {
	query := bson.M{}

	if filter.Kind != "" {
		query["kind"] = filter.Kind
	}
	if filter.Tag != "" {
		query["tags"] = filter.Tag
	}
	if filter.Query != "" {
		regex := primitive.Regex{Pattern: filter.Query, Options: "i"}
		query["$or"] = []bson.M{
			{"title": regex},
			{"description": regex},
		}
	}

	switch {
	case filter.OwnerID != nil && *filter.OwnerID == filter.CallerID:
		// Owners see all of their own items regardless of visibility.
		query["ownerId"] = *filter.OwnerID
	case filter.OwnerID != nil:
		query["ownerId"] = *filter.OwnerID
		query["isPublic"] = true
	case filter.CallerID != primitive.NilObjectID:
		visibility := []bson.M{
			{"isPublic": true},
			{"ownerId": filter.CallerID},
		}
		if existing, ok := query["$or"]; ok {
			// Combine the text search with the visibility union.
			query["$and"] = []bson.M{
				{"$or": existing},
				{"$or": visibility},
			}
			delete(query, "$or")
		} else {
			query["$or"] = visibility
		}
	default:
		query["isPublic"] = true
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var items []models.ContentItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SetLike adds or removes a user from the like set. $addToSet keeps the
// set free of duplicates even under concurrent toggles.
func (r *ContentRepository) SetLike(ctx context.Context, contentID, userID primitive.ObjectID, liked bool) error {
	var update bson.M
	if liked {
		update = bson.M{"$addToSet": bson.M{"likes": userID}}
	} else {
		update = bson.M{"$pull": bson.M{"likes": userID}}
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": contentID}, update)
	return err
}

// PushComment inserts at position 0: comments display newest-first.
func (r *ContentRepository) PushComment(ctx context.Context, contentID primitive.ObjectID, comment models.Comment) error {
	update := bson.M{
		"$push": bson.M{
			"comments": bson.M{
				"$each":     []models.Comment{comment},
				"$position": 0,
			},
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": contentID}, update)
	return err
}

func (r *ContentRepository) PullComment(ctx context.Context, contentID, commentID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": contentID}, update)
	return err
}

func (r *ContentRepository) IncrementPlays(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"plays": 1}})
	return err
}
