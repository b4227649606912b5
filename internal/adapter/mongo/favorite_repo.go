package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/bozormedia/classifieds-service/internal/entity"
	"github.com/bozormedia/classifieds-service/internal/port/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FavoriteMongoRepository relies on the unique (user_id, listing_id) index
// created by EnsureIndexes to keep the pair unique under concurrency.
type FavoriteMongoRepository struct {
	db *mongo.Database
}

func NewFavoriteMongoRepository(client *mongo.Client, dbName string) *FavoriteMongoRepository {
	return &FavoriteMongoRepository{db: client.Database(dbName)}
}

func (r *FavoriteMongoRepository) collection() *mongo.Collection {
	return r.db.Collection(favoritesCollectionName)
}

func (r *FavoriteMongoRepository) Get(ctx context.Context, userID, listingID string) (*entity.Favorite, error) {
	var doc favoriteDocument
	err := r.collection().FindOne(ctx, bson.M{"user_id": userID, "listing_id": listingID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get favorite from mongo: %w", err)
	}
	return toFavoriteEntity(&doc), nil
}

func (r *FavoriteMongoRepository) Add(ctx context.Context, favorite *entity.Favorite) error {
	doc := favoriteDocument{
		UserID:    favorite.UserID,
		ListingID: favorite.ListingID,
		CreatedAt: favorite.CreatedAt,
	}
	_, err := r.collection().InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateKey
		}
		return fmt.Errorf("failed to add favorite in mongo: %w", err)
	}
	return nil
}

func (r *FavoriteMongoRepository) Remove(ctx context.Context, userID, listingID string) error {
	res, err := r.collection().DeleteOne(ctx, bson.M{"user_id": userID, "listing_id": listingID})
	if err != nil {
		return fmt.Errorf("failed to remove favorite in mongo: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *FavoriteMongoRepository) FindByUserID(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	cursor, err := r.collection().Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []favoriteDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}

	favorites := make([]*entity.Favorite, len(docs))
	for i := range docs {
		favorites[i] = toFavoriteEntity(&docs[i])
	}
	return favorites, nil
}
