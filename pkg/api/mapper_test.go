package api

import (
	"testing"
)

func TestMapFeedItems_Rejects(t *testing.T) {
	const validID = "73A7F70C-75DA-4C2E-B5A3-EED40DC53AA6"

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non 200 status", status: 404, body: `{"items": []}`},
		{name: "empty body", status: 200, body: ``},
		{name: "not json", status: 200, body: `invalid json`},
		{name: "top level array", status: 200, body: `[]`},
		{name: "missing items key", status: 200, body: `{}`},
		{name: "null items", status: 200, body: `{"items": null}`},
		{name: "items not array", status: 200, body: `{"items": {}}`},
		{name: "null entry", status: 200, body: `{"items": [null]}`},
		{name: "missing id", status: 200, body: `{"items": [{"image": "http://a-url.com"}]}`},
		{name: "malformed id", status: 200, body: `{"items": [{"id": "not-a-uuid", "image": "http://a-url.com"}]}`},
		{name: "numeric id", status: 200, body: `{"items": [{"id": 1, "image": "http://a-url.com"}]}`},
		{name: "missing image", status: 200, body: `{"items": [{"id": "` + validID + `"}]}`},
		{name: "empty image", status: 200, body: `{"items": [{"id": "` + validID + `", "image": ""}]}`},
		{name: "unparseable image", status: 200, body: `{"items": [{"id": "` + validID + `", "image": "http://[::1"}]}`},
		{name: "wrong description type", status: 200, body: `{"items": [{"id": "` + validID + `", "image": "http://a-url.com", "description": 3}]}`},
		{name: "case folded keys", status: 200, body: `{"ITEMS": [{"Id": "` + validID + `", "IMAGE": "http://a-url.com"}]}`},
		{name: "case folded item keys", status: 200, body: `{"items": [{"ID": "` + validID + `", "Image": "http://a-url.com"}]}`},
		{name: "null root", status: 200, body: `null`},
		{name: "one bad entry spoils all", status: 200, body: `{"items": [{"id": "` + validID + `", "image": "http://a-url.com"}, {"image": "http://a-url.com"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := MapFeedItems([]byte(tt.body), tt.status)
			if err == nil {
				t.Fatalf("MapFeedItems() = %v, want error", items)
			}
			if items != nil {
				t.Errorf("MapFeedItems() items = %v, want nil", items)
			}
		})
	}
}

func TestMapFeedItems_DecodesOptionalFieldsAndIgnoresUnknown(t *testing.T) {
	body := `{"items": [
		{"id": "73A7F70C-75DA-4C2E-B5A3-EED40DC53AA6", "image": "https://a-url.com/1.png", "extra": true},
		{"id": "BA298A85-6275-48D3-8315-9C8F7C1CD109", "description": "desc", "location": null, "image": "https://a-url.com/2.png"}
	]}`

	items, err := MapFeedItems([]byte(body), 200)
	if err != nil {
		t.Fatalf("MapFeedItems() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	if items[0].Description != nil || items[0].Location != nil {
		t.Errorf("first item optional fields = %v, %v, want nil", items[0].Description, items[0].Location)
	}
	if items[1].Description == nil || *items[1].Description != "desc" {
		t.Errorf("second item description = %v, want desc", items[1].Description)
	}
	if items[1].Location != nil {
		t.Errorf("second item location = %v, want nil", *items[1].Location)
	}
	if got := items[1].Image.String(); got != "https://a-url.com/2.png" {
		t.Errorf("second item image = %s, want https://a-url.com/2.png", got)
	}
	if got := items[0].ID.String(); got != "73a7f70c-75da-4c2e-b5a3-eed40dc53aa6" {
		t.Errorf("first item id = %s", got)
	}
}

func TestMapFeedItems_Deterministic(t *testing.T) {
	body := []byte(`{"items": [{"id": "73A7F70C-75DA-4C2E-B5A3-EED40DC53AA6", "image": "https://a-url.com"}]}`)

	first, err1 := MapFeedItems(body, 200)
	second, err2 := MapFeedItems(body, 200)
	if err1 != nil || err2 != nil {
		t.Fatalf("errors = %v, %v", err1, err2)
	}
	if first[0].ID != second[0].ID || first[0].Image != second[0].Image {
		t.Errorf("MapFeedItems() not deterministic: %v vs %v", first, second)
	}
}
