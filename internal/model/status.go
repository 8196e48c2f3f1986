package model

// ItemStatus represents the lifecycle state of an acquisition item.
type ItemStatus string

const (
	// ItemStatusPending means the item is queued but not started
	ItemStatusPending ItemStatus = "Pending"

	// ItemStatusResolving means remote info lookup is in progress
	ItemStatusResolving ItemStatus = "Resolving"

	// ItemStatusFetching means stream download is in progress
	ItemStatusFetching ItemStatus = "Fetching"

	// ItemStatusEncoding means the external encoder is running
	ItemStatusEncoding ItemStatus = "Encoding"

	// ItemStatusCompleted means the item finished successfully
	ItemStatusCompleted ItemStatus = "Completed"

	// ItemStatusError means the item failed with an error
	ItemStatusError ItemStatus = "Error"
)

// String returns the string representation of ItemStatus.
func (s ItemStatus) String() string {
	return string(s)
}

// IsActive returns true if the item is in an active state.
func (s ItemStatus) IsActive() bool {
	return s == ItemStatusResolving || s == ItemStatusFetching || s == ItemStatusEncoding
}

// IsFinished returns true if the item reached a terminal state.
func (s ItemStatus) IsFinished() bool {
	return s == ItemStatusCompleted || s == ItemStatusError
}
