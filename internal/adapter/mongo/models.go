package mongo

import (
	"fmt"
	"time"

	"github.com/bozormedia/classifieds-service/internal/entity"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	listingsCollectionName      = "listings"
	conversationsCollectionName = "conversations"
	messagesCollectionName      = "messages"
	favoritesCollectionName     = "favorites"
)

type imageDocument struct {
	ID         string `bson:"id"`
	StorageKey string `bson:"storage_key"`
	URL        string `bson:"url"`
}

type attributeValueDocument struct {
	CategoryAttributeID string `bson:"category_attribute_id"`
	Value               string `bson:"value"`
}

type listingDocument struct {
	ID             primitive.ObjectID       `bson:"_id,omitempty"`
	SellerID       string                   `bson:"seller_id"`
	CategoryID     string                   `bson:"category_id"`
	CategoryIsLeaf bool                     `bson:"category_is_leaf"`
	Title          string                   `bson:"title"`
	Description    string                   `bson:"description"`
	Price          float64                  `bson:"price"`
	Currency       string                   `bson:"currency"`
	City           string                   `bson:"city"`
	Region         string                   `bson:"region"`
	Condition      string                   `bson:"condition,omitempty"`
	Attributes     []attributeValueDocument `bson:"attributes"`
	Images         []imageDocument          `bson:"images"`
	CoverImageID   string                   `bson:"cover_image_id,omitempty"`
	Status         string                   `bson:"status"`
	RejectionReason string                  `bson:"rejection_reason,omitempty"`
	BumpedAt       *time.Time               `bson:"bumped_at,omitempty"`
	FeaturedUntil  *time.Time               `bson:"featured_until,omitempty"`
	UrgentUntil    *time.Time               `bson:"urgent_until,omitempty"`
	CreatedAt      time.Time                `bson:"created_at"`
	UpdatedAt      time.Time                `bson:"updated_at"`
	DeletedAt      *time.Time               `bson:"deleted_at,omitempty"`
}

func toListingDocument(l *entity.Listing) (*listingDocument, error) {
	doc := &listingDocument{
		SellerID:        l.SellerID,
		CategoryID:      l.CategoryID,
		CategoryIsLeaf:  l.CategoryIsLeaf,
		Title:           l.Title,
		Description:     l.Description,
		Price:           l.Price,
		Currency:        l.Currency,
		City:            l.City,
		Region:          l.Region,
		Condition:       l.Condition,
		CoverImageID:    l.CoverImageID,
		Status:          string(l.Status),
		RejectionReason: l.RejectionReason,
		BumpedAt:        l.BumpedAt,
		FeaturedUntil:   l.FeaturedUntil,
		UrgentUntil:     l.UrgentUntil,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
		DeletedAt:       l.DeletedAt,
	}
	doc.Attributes = make([]attributeValueDocument, len(l.Attributes))
	for i, a := range l.Attributes {
		doc.Attributes[i] = attributeValueDocument{CategoryAttributeID: a.CategoryAttributeID, Value: a.Value}
	}
	doc.Images = make([]imageDocument, len(l.Images))
	for i, img := range l.Images {
		doc.Images[i] = imageDocument{ID: img.ID, StorageKey: img.StorageKey, URL: img.URL}
	}
	if l.ID != "" {
		objID, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid listing ID format: %w", err)
		}
		doc.ID = objID
	}
	return doc, nil
}

func toListingEntity(doc *listingDocument) *entity.Listing {
	l := &entity.Listing{
		ID:              doc.ID.Hex(),
		SellerID:        doc.SellerID,
		CategoryID:      doc.CategoryID,
		CategoryIsLeaf:  doc.CategoryIsLeaf,
		Title:           doc.Title,
		Description:     doc.Description,
		Price:           doc.Price,
		Currency:        doc.Currency,
		City:            doc.City,
		Region:          doc.Region,
		Condition:       doc.Condition,
		CoverImageID:    doc.CoverImageID,
		Status:          entity.ListingStatus(doc.Status),
		RejectionReason: doc.RejectionReason,
		BumpedAt:        doc.BumpedAt,
		FeaturedUntil:   doc.FeaturedUntil,
		UrgentUntil:     doc.UrgentUntil,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
		DeletedAt:       doc.DeletedAt,
	}
	l.Attributes = make([]entity.AttributeValue, len(doc.Attributes))
	for i, a := range doc.Attributes {
		l.Attributes[i] = entity.AttributeValue{CategoryAttributeID: a.CategoryAttributeID, Value: a.Value}
	}
	l.Images = make([]entity.Image, len(doc.Images))
	for i, img := range doc.Images {
		l.Images[i] = entity.Image{ID: img.ID, StorageKey: img.StorageKey, URL: img.URL}
	}
	return l
}

type conversationDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	ListingID        string             `bson:"listing_id"`
	SellerID         string             `bson:"seller_id"`
	BuyerID          string             `bson:"buyer_id"`
	IsBlocked        bool               `bson:"is_blocked"`
	SellerLastReadAt *time.Time         `bson:"seller_last_read_at,omitempty"`
	BuyerLastReadAt  *time.Time         `bson:"buyer_last_read_at,omitempty"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

func toConversationDocument(c *entity.Conversation) (*conversationDocument, error) {
	doc := &conversationDocument{
		ListingID:        c.ListingID,
		SellerID:         c.SellerID,
		BuyerID:          c.BuyerID,
		IsBlocked:        c.IsBlocked,
		SellerLastReadAt: c.SellerLastReadAt,
		BuyerLastReadAt:  c.BuyerLastReadAt,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	if c.ID != "" {
		objID, err := primitive.ObjectIDFromHex(c.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid conversation ID format: %w", err)
		}
		doc.ID = objID
	}
	return doc, nil
}

func toConversationEntity(doc *conversationDocument) *entity.Conversation {
	return &entity.Conversation{
		ID:               doc.ID.Hex(),
		ListingID:        doc.ListingID,
		SellerID:         doc.SellerID,
		BuyerID:          doc.BuyerID,
		IsBlocked:        doc.IsBlocked,
		SellerLastReadAt: doc.SellerLastReadAt,
		BuyerLastReadAt:  doc.BuyerLastReadAt,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

type messageDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	ConversationID     string             `bson:"conversation_id"`
	SenderID           string             `bson:"sender_id"`
	Body               string             `bson:"body"`
	CreatedAt          time.Time          `bson:"created_at"`
	ReadAt             *time.Time         `bson:"read_at,omitempty"`
	DeletedForSender   bool               `bson:"deleted_for_sender"`
	DeletedForReceiver bool               `bson:"deleted_for_receiver"`
}

func toMessageDocument(m *entity.Message) (*messageDocument, error) {
	doc := &messageDocument{
		ConversationID:     m.ConversationID,
		SenderID:           m.SenderID,
		Body:               m.Body,
		CreatedAt:          m.CreatedAt,
		ReadAt:             m.ReadAt,
		DeletedForSender:   m.DeletedForSender,
		DeletedForReceiver: m.DeletedForReceiver,
	}
	if m.ID != "" {
		objID, err := primitive.ObjectIDFromHex(m.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid message ID format: %w", err)
		}
		doc.ID = objID
	}
	return doc, nil
}

func toMessageEntity(doc *messageDocument) *entity.Message {
	return &entity.Message{
		ID:                 doc.ID.Hex(),
		ConversationID:     doc.ConversationID,
		SenderID:           doc.SenderID,
		Body:               doc.Body,
		CreatedAt:          doc.CreatedAt,
		ReadAt:             doc.ReadAt,
		DeletedForSender:   doc.DeletedForSender,
		DeletedForReceiver: doc.DeletedForReceiver,
	}
}

type favoriteDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	ListingID string             `bson:"listing_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

func toFavoriteEntity(doc *favoriteDocument) *entity.Favorite {
	return &entity.Favorite{
		UserID:    doc.UserID,
		ListingID: doc.ListingID,
		CreatedAt: doc.CreatedAt,
	}
}
