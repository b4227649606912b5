package entity

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every usecase. Operations return one of these
// (possibly wrapped with extra context), never panic across layer boundaries.
var (
	// ErrNotFound indicates that a requested entity, or an authorized view of
	// it, does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrForbidden indicates that the acting user lacks rights over the entity.
	ErrForbidden = errors.New("action forbidden")
	// ErrInvalidState indicates that the entity is not in a state that permits
	// the requested transition.
	ErrInvalidState = errors.New("invalid entity state")
	// ErrValidation indicates malformed input caught before touching storage.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a uniqueness conflict, e.g. duplicate attribute values.
	ErrConflict = errors.New("conflict")
)

// Named invalid-state failures used by the listing lifecycle.
var (
	ErrNotDraft            = fmt.Errorf("%w: listing is not a draft", ErrInvalidState)
	ErrNotPublished        = fmt.Errorf("%w: listing is not published", ErrInvalidState)
	ErrBumpNotAllowed      = fmt.Errorf("%w: bump not allowed", ErrInvalidState)
	ErrNotPendingReview    = fmt.Errorf("%w: listing is not awaiting moderation", ErrInvalidState)
	ErrImageNotFound       = fmt.Errorf("%w: image does not belong to listing", ErrNotFound)
	ErrListingNotPublished = fmt.Errorf("%w: listing is not published", ErrInvalidState)
)

// PublishBlockReason enumerates the preconditions checked by CanPublish, in
// the order they are reported.
type PublishBlockReason string

const (
	BlockMissingTitle       PublishBlockReason = "missing title"
	BlockMissingDescription PublishBlockReason = "missing description"
	BlockMissingPrice       PublishBlockReason = "missing price"
	BlockMissingCurrency    PublishBlockReason = "missing currency"
	BlockMissingLocation    PublishBlockReason = "missing location"
	BlockCategoryNotLeaf    PublishBlockReason = "category is not a leaf"
	BlockNoImages           PublishBlockReason = "no images"
)

// PublishBlockedError is returned by SubmitForReview when a listing does not
// satisfy the publication preconditions. It carries the first failing reason.
type PublishBlockedError struct {
	Reason PublishBlockReason
}

func (e *PublishBlockedError) Error() string {
	return fmt.Sprintf("listing cannot be published: %s", e.Reason)
}

func (e *PublishBlockedError) Unwrap() error { return ErrInvalidState }
