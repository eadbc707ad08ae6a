package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

var (
	errUnexpectedStatus = errors.New("unexpected status code")
	errMissingField     = errors.New("missing mandatory field")
)

// RemoteFeedItem is the wire representation of a feed item.
type RemoteFeedItem struct {
	ID          uuid.UUID
	Description *string
	Location    *string
	Image       url.URL
}

// wireItem holds one entry of the "items" array keyed exactly as sent.
// Struct tags would also match "ID" or "Image".
type wireItem map[string]json.RawMessage

// MapFeedItems decodes a feed payload. It succeeds only for status 200 and
// a body of the form {"items": [...]} where every entry carries an id and
// an image URL. Keys are matched case-sensitively. Any other input yields
// an error and no items.
func MapFeedItems(data []byte, statusCode int) ([]RemoteFeedItem, error) {
	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, statusCode)
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	rawItems, ok := root["items"]
	if !ok {
		return nil, fmt.Errorf("%w: items", errMissingField)
	}

	var entries []wireItem
	if err := json.Unmarshal(rawItems, &entries); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if entries == nil {
		return nil, fmt.Errorf("%w: items", errMissingField)
	}

	items := make([]RemoteFeedItem, 0, len(entries))
	for i, w := range entries {
		item, err := w.toRemote()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}

	return items, nil
}

func (w wireItem) toRemote() (RemoteFeedItem, error) {
	var (
		id                    *uuid.UUID
		description, location *string
		image                 *string
	)
	if err := w.field("id", &id); err != nil {
		return RemoteFeedItem{}, err
	}
	if err := w.field("description", &description); err != nil {
		return RemoteFeedItem{}, err
	}
	if err := w.field("location", &location); err != nil {
		return RemoteFeedItem{}, err
	}
	if err := w.field("image", &image); err != nil {
		return RemoteFeedItem{}, err
	}

	if id == nil {
		return RemoteFeedItem{}, fmt.Errorf("%w: id", errMissingField)
	}
	if image == nil || *image == "" {
		return RemoteFeedItem{}, fmt.Errorf("%w: image", errMissingField)
	}

	parsed, err := url.Parse(*image)
	if err != nil {
		return RemoteFeedItem{}, fmt.Errorf("parse image url: %w", err)
	}

	return RemoteFeedItem{
		ID:          *id,
		Description: description,
		Location:    location,
		Image:       *parsed,
	}, nil
}

// field decodes the value under key into dst. An absent key leaves dst
// untouched; a nil entry has no keys.
func (w wireItem) field(key string, dst any) error {
	raw, ok := w[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
