package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/bozormedia/classifieds-service/internal/entity"
	"github.com/bozormedia/classifieds-service/internal/port/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ListingMongoRepository struct {
	db *mongo.Database
}

func NewListingMongoRepository(client *mongo.Client, dbName string) *ListingMongoRepository {
	return &ListingMongoRepository{db: client.Database(dbName)}
}

func (r *ListingMongoRepository) collection() *mongo.Collection {
	return r.db.Collection(listingsCollectionName)
}

func (r *ListingMongoRepository) Create(ctx context.Context, listing *entity.Listing) (string, error) {
	doc, err := toListingDocument(listing)
	if err != nil {
		return "", err
	}

	res, err := r.collection().InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create listing in mongo: %w", err)
	}
	insertedID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted_id to ObjectID")
	}
	return insertedID.Hex(), nil
}

func (r *ListingMongoRepository) Update(ctx context.Context, listing *entity.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil {
		return err
	}
	if doc.ID.IsZero() {
		return fmt.Errorf("listing ID is required for update")
	}

	res, err := r.collection().ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("failed to update listing in mongo: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ListingMongoRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc listingDocument
	err = r.collection().FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing by id from mongo: %w", err)
	}
	return toListingEntity(&doc), nil
}

func (r *ListingMongoRepository) IsPublished(ctx context.Context, id string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, repository.ErrNotFound
	}

	count, err := r.collection().CountDocuments(ctx, bson.M{
		"_id":        objID,
		"status":     string(entity.StatusPublished),
		"deleted_at": nil,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check listing publication state: %w", err)
	}
	return count > 0, nil
}

func (r *ListingMongoRepository) Search(ctx context.Context, filter repository.ListingSearchFilter) ([]*entity.Listing, int64, error) {
	mongoFilter := bson.M{
		"status":     string(entity.StatusPublished),
		"deleted_at": nil,
	}
	if filter.Query != "" {
		mongoFilter["title"] = bson.M{"$regex": filter.Query, "$options": "i"}
	}
	price := bson.M{}
	if filter.MinPrice > 0 {
		price["$gte"] = filter.MinPrice
	}
	if filter.MaxPrice > 0 {
		price["$lte"] = filter.MaxPrice
	}
	if len(price) > 0 {
		mongoFilter["price"] = price
	}

	findOptions := options.Find().
		SetSkip(int64((filter.Page - 1) * filter.PageSize)).
		SetLimit(int64(filter.PageSize)).
		// Bumped listings float to the top of the results.
		SetSort(bson.D{{Key: "bumped_at", Value: -1}, {Key: "created_at", Value: -1}})

	cursor, err := r.collection().Find(ctx, mongoFilter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search listings in mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode listing search results: %w", err)
	}

	listings := make([]*entity.Listing, len(docs))
	for i := range docs {
		listings[i] = toListingEntity(&docs[i])
	}

	total, err := r.collection().CountDocuments(ctx, mongoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count listing search results: %w", err)
	}
	return listings, total, nil
}

func (r *ListingMongoRepository) SearchPending(ctx context.Context, page, pageSize int) ([]*repository.PendingListing, int64, error) {
	mongoFilter := bson.M{
		"status":     string(entity.StatusPendingReview),
		"deleted_at": nil,
	}

	findOptions := options.Find().
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize)).
		// Oldest submission first keeps the queue order stable for moderators.
		SetSort(bson.D{{Key: "updated_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection().Find(ctx, mongoFilter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search pending listings in mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode pending listings: %w", err)
	}

	items := make([]*repository.PendingListing, len(docs))
	for i := range docs {
		items[i] = &repository.PendingListing{
			Listing:    toListingEntity(&docs[i]),
			ImageCount: len(docs[i].Images),
		}
	}

	total, err := r.collection().CountDocuments(ctx, mongoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count pending listings: %w", err)
	}
	return items, total, nil
}
