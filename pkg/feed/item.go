// Package feed defines the feed domain model and the loader abstractions
// shared by the remote and local loading pipelines.
package feed

import (
	"net/url"

	"github.com/google/uuid"
)

// FeedItem is a single entry of the feed as seen by client applications.
// Items are identified by ID and are never mutated after construction.
type FeedItem struct {
	// ID uniquely identifies the item
	ID uuid.UUID

	// Description is optional free text
	Description *string

	// Location is optional free text
	Location *string

	// ImageURL points at the image backing the item
	ImageURL url.URL
}

// String returns a pointer to s, for populating optional fields.
func String(s string) *string {
	return &s
}
