// Package event defines what feedscan emits about a search session. Any
// consumer (journal, webhook receiver, custom pipeline) imports this package
// to decode the stream.
package event

import "encoding/json"

// Type is the kind of session event.
type Type string

const (
	TypeStarted    Type = "started"    // Idle -> Searching
	TypePaused     Type = "paused"     // Searching -> Paused
	TypeResumed    Type = "resumed"    // Paused -> Searching
	TypeRejected   Type = "rejected"   // toggle refused (empty query)
	TypeLocated    Type = "located"    // tick found a matching item
	TypeExhausted  Type = "exhausted"  // tick found nothing in the window
	TypeNavigated  Type = "navigated"  // host page URL changed (debounced)
	TypeReanchored Type = "reanchored" // search form injected again
)

// Event is one entry of the session stream.
type Event struct {
	ID        string `json:"id"` // UUIDv7
	SessionID string `json:"session_id,omitempty"`
	Type      Type   `json:"type"`
	State     string `json:"state"` // session state after the event
	Query     string `json:"query,omitempty"`
	PageURL   string `json:"page_url,omitempty"`
	ItemKey   string `json:"item_key,omitempty"`
	Snippet   string `json:"snippet,omitempty"` // markdown of the located item
	Tick      uint64 `json:"tick,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// Marshal encodes an event as JSON.
func Marshal(e *Event) ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal decodes an event from JSON.
func Unmarshal(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
