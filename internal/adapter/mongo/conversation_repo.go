package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bozormedia/classifieds-service/internal/entity"
	"github.com/bozormedia/classifieds-service/internal/port/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ConversationMongoRepository struct {
	db *mongo.Database
}

func NewConversationMongoRepository(client *mongo.Client, dbName string) *ConversationMongoRepository {
	return &ConversationMongoRepository{db: client.Database(dbName)}
}

func (r *ConversationMongoRepository) collection() *mongo.Collection {
	return r.db.Collection(conversationsCollectionName)
}

func (r *ConversationMongoRepository) messages() *mongo.Collection {
	return r.db.Collection(messagesCollectionName)
}

func (r *ConversationMongoRepository) Create(ctx context.Context, conv *entity.Conversation) (string, error) {
	doc, err := toConversationDocument(conv)
	if err != nil {
		return "", err
	}

	res, err := r.collection().InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrDuplicateKey
		}
		return "", fmt.Errorf("failed to create conversation in mongo: %w", err)
	}
	insertedID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted_id to ObjectID")
	}
	return insertedID.Hex(), nil
}

func (r *ConversationMongoRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc conversationDocument
	err = r.collection().FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation by id from mongo: %w", err)
	}
	return toConversationEntity(&doc), nil
}

func (r *ConversationMongoRepository) GetByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*entity.Conversation, error) {
	var doc conversationDocument
	err := r.collection().FindOne(ctx, bson.M{"listing_id": listingID, "buyer_id": buyerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation by listing and buyer: %w", err)
	}
	return toConversationEntity(&doc), nil
}

func (r *ConversationMongoRepository) GetInbox(ctx context.Context, userID string, page, pageSize int) ([]*repository.InboxRow, int64, error) {
	participantFilter := bson.M{"$or": bson.A{
		bson.M{"seller_id": userID},
		bson.M{"buyer_id": userID},
	}}

	findOptions := options.Find().
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize)).
		SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.collection().Find(ctx, participantFilter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load inbox from mongo: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []conversationDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode inbox conversations: %w", err)
	}

	rows := make([]*repository.InboxRow, 0, len(docs))
	for i := range docs {
		conv := toConversationEntity(&docs[i])
		row := &repository.InboxRow{
			ConversationID: conv.ID,
			ListingID:      conv.ListingID,
			OtherUserID:    conv.OtherParticipant(userID),
			IsBlocked:      conv.IsBlocked,
			UpdatedAt:      conv.UpdatedAt,
		}

		if err := r.fillLastMessage(ctx, row, userID); err != nil {
			return nil, 0, err
		}
		unread, err := r.countUnread(ctx, conv.ID, userID)
		if err != nil {
			return nil, 0, err
		}
		row.UnreadCount = unread
		rows = append(rows, row)
	}

	total, err := r.collection().CountDocuments(ctx, participantFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count inbox conversations: %w", err)
	}
	return rows, total, nil
}

// fillLastMessage resolves the newest message still visible to the viewer.
// Messages the viewer deleted for themselves never surface as a preview,
// while the counterpart keeps seeing them.
func (r *ConversationMongoRepository) fillLastMessage(ctx context.Context, row *repository.InboxRow, userID string) error {
	visibleFilter := bson.M{
		"conversation_id": row.ConversationID,
		"$or": bson.A{
			bson.M{"sender_id": userID, "deleted_for_sender": false},
			bson.M{"sender_id": bson.M{"$ne": userID}, "deleted_for_receiver": false},
		},
	}

	var doc messageDocument
	err := r.messages().FindOne(ctx, visibleFilter,
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return fmt.Errorf("failed to load last message preview: %w", err)
	}
	row.LastMessage = doc.Body
	row.LastMessageAt = &doc.CreatedAt
	return nil
}

func (r *ConversationMongoRepository) countUnread(ctx context.Context, conversationID, userID string) (int64, error) {
	count, err := r.messages().CountDocuments(ctx, bson.M{
		"conversation_id":      conversationID,
		"sender_id":            bson.M{"$ne": userID},
		"read_at":              nil,
		"deleted_for_receiver": false,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

func (r *ConversationMongoRepository) MarkRead(ctx context.Context, conversationID, userID string, at time.Time) error {
	objID, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return repository.ErrNotFound
	}

	// The marker field depends on which side the caller is on.
	res, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": objID, "seller_id": userID},
		bson.M{"$set": bson.M{"seller_last_read_at": at}})
	if err != nil {
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	res, err = r.collection().UpdateOne(ctx,
		bson.M{"_id": objID, "buyer_id": userID},
		bson.M{"$set": bson.M{"buyer_last_read_at": at}})
	if err != nil {
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ConversationMongoRepository) SetBlocked(ctx context.Context, conversationID string, blocked bool) error {
	objID, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return repository.ErrNotFound
	}

	res, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"is_blocked": blocked}})
	if err != nil {
		return fmt.Errorf("failed to set conversation block flag: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ConversationMongoRepository) Touch(ctx context.Context, conversationID string, at time.Time) error {
	objID, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return repository.ErrNotFound
	}

	res, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"updated_at": at}})
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
