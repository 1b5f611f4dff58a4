package models

import "errors"

var (
	// ErrFeedFormat is returned when the feed body is neither a listing array nor an object with a listings array.
	ErrFeedFormat = errors.New("feed must be a JSON array or an object with a listings array")

	// ErrEndpointMisconfigured is returned before any network call when the action endpoint is missing or unusable.
	ErrEndpointMisconfigured = errors.New("action endpoint is missing or invalid")

	// ErrInvalidAction is returned when a requested transition is not a manager action.
	ErrInvalidAction = errors.New("invalid action")

	// ErrActionInFlight is returned when the same listing+action pair is already being dispatched.
	ErrActionInFlight = errors.New("action already in flight")

	// ErrListingNotFound is returned when a listing id is not present in the current feed snapshot.
	ErrListingNotFound = errors.New("listing not found")
)

// ErrTransitionExists is returned when a transition record with the same id is already stored.
var ErrTransitionExists = errors.New("transition already exists")
