package model

import (
	"encoding/json"
	"fmt"
)

type MessageID string

type ContentKind int

const (
	ContentKindText ContentKind = iota
	ContentKindMedia
	ContentKindImage
)

// TimeLayout is the minute resolution wall clock used for CreatedAt.
const TimeLayout = "15:04"

var contentKindNames = map[ContentKind]string{
	ContentKindText:  "text",
	ContentKindMedia: "media",
	ContentKindImage: "image",
}

func (k ContentKind) String() string {
	if name, ok := contentKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ContentKind(%d)", int(k))
}

func (k ContentKind) MarshalJSON() ([]byte, error) {
	name, ok := contentKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown content kind: %d", int(k))
	}
	return json.Marshal(name)
}

func (k *ContentKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("unmarshalling content kind: %w", err)
	}
	for kind, n := range contentKindNames {
		if n == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown content kind: %q", name)
}

type Message struct {
	ID        MessageID   `json:"id"`
	Author    string      `json:"author"`
	Content   string      `json:"content"`
	Kind      ContentKind `json:"kind"`
	CreatedAt string      `json:"createdAt"`
}

// Feed is the full state of one group's log as seen by a poll. Version changes
// exactly when the log grows.
type Feed struct {
	GroupID  GroupID   `json:"groupId"`
	Messages []Message `json:"messages"`
	Version  string    `json:"version"`
}
