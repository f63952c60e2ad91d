package domain

import "encoding/json"

// Post represents a published post
type Post struct {
	ID   string
	Text string
	Raw  json.RawMessage
}
