package cache

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/Sternrassler/essential-feed/pkg/feed"
	"github.com/google/uuid"
)

type messageKind int

const (
	deleteCachedFeed messageKind = iota
	insert
	retrieve
)

// receivedMessage is one call observed by feedStoreSpy.
type receivedMessage struct {
	kind      messageKind
	items     []LocalFeedItem
	timestamp time.Time
}

// feedStoreSpy records every call and answers with the configured results.
type feedStoreSpy struct {
	mu       sync.Mutex
	messages []receivedMessage

	deletionErr  error
	insertionErr error
	retrieval    CachedFeed
	found        bool
	retrievalErr error

	// onDelete runs after a delete is recorded, before it returns
	onDelete func()
}

func (s *feedStoreSpy) DeleteCachedFeed(ctx context.Context) error {
	s.record(receivedMessage{kind: deleteCachedFeed})
	if s.onDelete != nil {
		s.onDelete()
	}
	return s.deletionErr
}

func (s *feedStoreSpy) Insert(ctx context.Context, items []LocalFeedItem, timestamp time.Time) error {
	s.record(receivedMessage{kind: insert, items: items, timestamp: timestamp})
	return s.insertionErr
}

func (s *feedStoreSpy) Retrieve(ctx context.Context) (CachedFeed, bool, error) {
	s.record(receivedMessage{kind: retrieve})
	return s.retrieval, s.found, s.retrievalErr
}

func (s *feedStoreSpy) record(m receivedMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
}

func (s *feedStoreSpy) receivedMessages() []receivedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]receivedMessage(nil), s.messages...)
}

func (s *feedStoreSpy) completeRetrieval(items []LocalFeedItem, timestamp time.Time) {
	s.retrieval = CachedFeed{Feed: items, Timestamp: timestamp}
	s.found = true
}

func makeSUT(currentDate func() time.Time) (*LocalLoader, *feedStoreSpy) {
	store := &feedStoreSpy{}
	return NewLocalLoader(store, currentDate), store
}

func anyError() error {
	return errors.New("any error")
}

func anyURL() url.URL {
	return url.URL{Scheme: "https", Host: "any-url.com"}
}

func uniqueItem() feed.FeedItem {
	return feed.FeedItem{
		ID:       uuid.New(),
		ImageURL: anyURL(),
	}
}

func uniqueItemFeed() ([]feed.FeedItem, []LocalFeedItem) {
	models := []feed.FeedItem{uniqueItem(), uniqueItem()}
	return models, ToLocal(models)
}

// fixedDate is a fixed "now" away from DST transitions.
func fixedDate() time.Time {
	return time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
}

func minusFeedCacheMaxAge(t time.Time) time.Time {
	return t.AddDate(0, 0, -MaxCacheAgeInDays)
}
