package domain

import "time"

type Car struct {
	ID             string
	Model          string
	Color          string
	RegistrationNo string
	CategoryID     string
	// CategoryName is filled by the repository when listing/fetching
	// via a join; it is never written directly.
	CategoryName string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CarPatch is a partial update. A nil field leaves the stored value
// unchanged; a non-nil field overwrites it, empty string included.
type CarPatch struct {
	Model          *string
	Color          *string
	RegistrationNo *string
	CategoryID     *string
}

// CarPage is one page of cars plus the pagination envelope.
type CarPage struct {
	Cars        []*Car
	TotalPages  int
	CurrentPage int
}
