package domain

import "errors"

var (
	// ErrGroupAssetMismatch ...
	ErrGroupAssetMismatch = errors.New("all accounts of a group must share the group asset")
	// ErrRecordNotFound ...
	ErrRecordNotFound = errors.New("transaction record not found")
	// ErrInvalidAddress is returned when a raw destination cannot be
	// parsed for the requested asset.
	ErrInvalidAddress = errors.New("address is not valid for this asset")
	// ErrUnsupportedRoute is returned when no engine exists for a
	// (source, target, action) combination.
	ErrUnsupportedRoute = errors.New("no engine supports this source/target/action combination")
	// ErrQuoteUnavailable is returned when no quote could be fetched for
	// the requested pair.
	ErrQuoteUnavailable = errors.New("no quote available for pair")
)
