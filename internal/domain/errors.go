package domain

import "errors"

// Domain errors
var (
	ErrItemNotFound         = errors.New("item not found")
	ErrItemNameRequired     = errors.New("item name is required")
	ErrItemCategoryRequired = errors.New("item category is required")
	ErrItemRoomRequired     = errors.New("item room is required")
	ErrItemRoomUnknown      = errors.New("item room is not in the configured room set")
	ErrItemStatusRequired   = errors.New("item status is required")
	ErrItemStatusUnknown    = errors.New("item status is not in the configured status set")
	ErrItemPriceNegative    = errors.New("item price must not be negative")
	ErrItemInvalidURL       = errors.New("purchase link must be a valid URL")
	ErrAdminOnly            = errors.New("only the administrator may modify items")
	ErrInvalidSortKey       = errors.New("sort key must be updated_at or price")
)
