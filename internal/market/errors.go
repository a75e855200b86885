package market

import "errors"

var (
	// ErrNotWhitelisted indicates the collection is not approved for listing.
	ErrNotWhitelisted = errors.New("market: collection is not whitelisted")

	// ErrNoActiveOffer indicates there is no live offer for the asset.
	ErrNoActiveOffer = errors.New("market: no active offer")

	// ErrUnauthorized indicates the caller is not allowed to perform the action.
	ErrUnauthorized = errors.New("market: only owner")

	// ErrNegativePrice indicates an offer price below zero.
	ErrNegativePrice = errors.New("market: price must not be negative")
)
