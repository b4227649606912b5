package entity

import (
	"fmt"
	"time"
)

// ListingStatus is the single authoritative lifecycle state of a listing.
// Moderation outcomes are expressed as transitions on this status rather than
// as a second independently mutable field: Approve is the only path from
// PendingReview to Published, Reject drops the listing back to Draft.
type ListingStatus string

const (
	StatusDraft         ListingStatus = "draft"
	StatusPendingReview ListingStatus = "pending_review"
	StatusPublished     ListingStatus = "published"
	StatusSold          ListingStatus = "sold"
	StatusArchived      ListingStatus = "archived"
	StatusHidden        ListingStatus = "hidden"
)

// IsValid checks if the ListingStatus is one of the defined constants.
func (s ListingStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusPublished, StatusSold, StatusArchived, StatusHidden:
		return true
	}
	return false
}

// Image is a stored listing photo. The listing owns its images: they are
// persisted inside the listing document and destroyed with it.
type Image struct {
	ID         string
	StorageKey string
	URL        string
}

// AttributeValue is a category-specific attribute filled in by the seller.
type AttributeValue struct {
	CategoryAttributeID string
	Value               string
}

// Listing is a sale post owned by a seller.
type Listing struct {
	ID             string
	SellerID       string
	CategoryID     string
	CategoryIsLeaf bool

	Title       string
	Description string
	Price       float64
	Currency    string
	City        string
	Region      string
	Condition   string
	Attributes  []AttributeValue
	Images      []Image
	CoverImageID string

	Status          ListingStatus
	RejectionReason string

	BumpedAt      *time.Time
	FeaturedUntil *time.Time
	UrgentUntil   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewListing creates a draft listing for a seller. Structural content (images,
// attributes, cover) is filled in while the listing stays in Draft.
func NewListing(sellerID, categoryID string, categoryIsLeaf bool) (*Listing, error) {
	if sellerID == "" {
		return nil, fmt.Errorf("%w: sellerID cannot be empty", ErrValidation)
	}
	if categoryID == "" {
		return nil, fmt.Errorf("%w: categoryID cannot be empty", ErrValidation)
	}
	now := time.Now().UTC()
	return &Listing{
		SellerID:       sellerID,
		CategoryID:     categoryID,
		CategoryIsLeaf: categoryIsLeaf,
		Status:         StatusDraft,
		Attributes:     []AttributeValue{},
		Images:         []Image{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsOwnedBy reports whether the given user is the seller of this listing.
func (l *Listing) IsOwnedBy(userID string) bool { return l.SellerID == userID }

// PublishBlock returns the first unmet publication precondition, or nil when
// the listing is complete enough to be submitted for review. The check order
// is fixed so callers always see a stable reason.
func (l *Listing) PublishBlock() *PublishBlockedError {
	switch {
	case l.Title == "":
		return &PublishBlockedError{Reason: BlockMissingTitle}
	case l.Description == "":
		return &PublishBlockedError{Reason: BlockMissingDescription}
	case l.Price <= 0:
		return &PublishBlockedError{Reason: BlockMissingPrice}
	case l.Currency == "":
		return &PublishBlockedError{Reason: BlockMissingCurrency}
	case l.City == "" || l.Region == "":
		return &PublishBlockedError{Reason: BlockMissingLocation}
	case !l.CategoryIsLeaf:
		return &PublishBlockedError{Reason: BlockCategoryNotLeaf}
	case len(l.Images) == 0:
		return &PublishBlockedError{Reason: BlockNoImages}
	}
	return nil
}

// CanPublish reports whether all publication preconditions hold.
func (l *Listing) CanPublish() bool { return l.PublishBlock() == nil }

// SubmitForReview moves a complete draft into the moderation queue.
func (l *Listing) SubmitForReview() error {
	if l.Status != StatusDraft {
		return ErrNotDraft
	}
	if block := l.PublishBlock(); block != nil {
		return block
	}
	l.Status = StatusPendingReview
	l.RejectionReason = ""
	l.touch()
	return nil
}

// Approve publishes a listing that completed SubmitForReview. A listing that
// never entered the moderation queue cannot be published this way.
func (l *Listing) Approve() error {
	if l.Status != StatusPendingReview {
		return ErrNotPendingReview
	}
	l.Status = StatusPublished
	l.RejectionReason = ""
	l.touch()
	return nil
}

// Reject returns the listing to the seller as an editable draft together with
// the moderator's reason.
func (l *Listing) Reject(reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: rejection reason cannot be empty", ErrValidation)
	}
	if l.Status != StatusPendingReview {
		return ErrNotPendingReview
	}
	l.Status = StatusDraft
	l.RejectionReason = reason
	l.touch()
	return nil
}

// Hide takes a published listing off the site without deleting it.
func (l *Listing) Hide() error {
	if l.Status != StatusPublished {
		return ErrNotPublished
	}
	l.Status = StatusHidden
	l.touch()
	return nil
}

// MarkSold transitions a published listing to Sold.
func (l *Listing) MarkSold() error {
	if l.Status != StatusPublished {
		return ErrNotPublished
	}
	l.Status = StatusSold
	l.touch()
	return nil
}

// Archive transitions a published listing to Archived.
func (l *Listing) Archive() error {
	if l.Status != StatusPublished {
		return ErrNotPublished
	}
	l.Status = StatusArchived
	l.touch()
	return nil
}

// Bump refreshes the recency ranking of a published listing. It is
// rate-limited: a bump is allowed only once per cooldown window.
func (l *Listing) Bump(now time.Time, cooldown time.Duration) error {
	if l.Status != StatusPublished {
		return ErrBumpNotAllowed
	}
	if l.BumpedAt != nil && now.Sub(*l.BumpedAt) < cooldown {
		return ErrBumpNotAllowed
	}
	bumped := now
	l.BumpedAt = &bumped
	l.touch()
	return nil
}

// SetFeatured opens a featured promotion window. until must be strictly in
// the future.
func (l *Listing) SetFeatured(until, now time.Time) error {
	if !until.After(now) {
		return fmt.Errorf("%w: featuredUntil must be in the future", ErrValidation)
	}
	l.FeaturedUntil = &until
	l.touch()
	return nil
}

// SetUrgent opens an urgent promotion window. until must be strictly in
// the future.
func (l *Listing) SetUrgent(until, now time.Time) error {
	if !until.After(now) {
		return fmt.Errorf("%w: urgentUntil must be in the future", ErrValidation)
	}
	l.UrgentUntil = &until
	l.touch()
	return nil
}

// SetCoverImage selects one of the listing's own images as the cover.
// Structural edits are draft-only.
func (l *Listing) SetCoverImage(imageID string) error {
	if l.Status != StatusDraft {
		return ErrNotDraft
	}
	if l.FindImage(imageID) == nil {
		return ErrImageNotFound
	}
	l.CoverImageID = imageID
	l.touch()
	return nil
}

// AddImage appends an uploaded image. The first image automatically becomes
// the cover. Draft-only.
func (l *Listing) AddImage(img Image) error {
	if l.Status != StatusDraft {
		return ErrNotDraft
	}
	l.Images = append(l.Images, img)
	if l.CoverImageID == "" {
		l.CoverImageID = img.ID
	}
	l.touch()
	return nil
}

// RemoveImage detaches an image. If the cover pointed at it, the cover falls
// back to the first remaining image. Draft-only.
func (l *Listing) RemoveImage(imageID string) (*Image, error) {
	if l.Status != StatusDraft {
		return nil, ErrNotDraft
	}
	for i, img := range l.Images {
		if img.ID == imageID {
			removed := img
			l.Images = append(l.Images[:i], l.Images[i+1:]...)
			if l.CoverImageID == imageID {
				l.CoverImageID = ""
				if len(l.Images) > 0 {
					l.CoverImageID = l.Images[0].ID
				}
			}
			l.touch()
			return &removed, nil
		}
	}
	return nil, ErrImageNotFound
}

// FindImage returns the image with the given id, or nil.
func (l *Listing) FindImage(imageID string) *Image {
	for i := range l.Images {
		if l.Images[i].ID == imageID {
			return &l.Images[i]
		}
	}
	return nil
}

// SetAttributes replaces the attribute values. Duplicate option values for the
// same category attribute are a conflict. Draft-only.
func (l *Listing) SetAttributes(values []AttributeValue) error {
	if l.Status != StatusDraft {
		return ErrNotDraft
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v.CategoryAttributeID]; dup {
			return fmt.Errorf("%w: duplicate value for attribute %s", ErrConflict, v.CategoryAttributeID)
		}
		seen[v.CategoryAttributeID] = struct{}{}
	}
	l.Attributes = values
	l.touch()
	return nil
}

// SoftDelete marks the listing deleted without removing the record.
func (l *Listing) SoftDelete(now time.Time) {
	deleted := now
	l.DeletedAt = &deleted
	l.touch()
}

// IsDeleted reports whether the listing was soft-deleted.
func (l *Listing) IsDeleted() bool { return l.DeletedAt != nil }

func (l *Listing) touch() { l.UpdatedAt = time.Now().UTC() }
