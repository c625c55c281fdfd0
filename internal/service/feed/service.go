package feed

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"uk.co.dudmesh.groupchat/internal/model"
)

type Store interface {
	Snapshot(groupID model.GroupID) ([]model.Message, error)
}

type service struct {
	store Store
}

func New(store Store) *service {
	return &service{store}
}

// Poll returns the group's whole log. Repeated polls with no append in
// between return the same feed.
func (s *service) Poll(groupID model.GroupID) (model.Feed, error) {
	messages, err := s.store.Snapshot(groupID)
	if err != nil {
		return model.Feed{}, err
	}
	return model.Feed{
		GroupID:  groupID,
		Messages: messages,
		Version:  Version(groupID, messages),
	}, nil
}

// Version identifies a log state. Logs only grow, so length and the id of the
// last message are enough to tell two states apart.
func Version(groupID model.GroupID, messages []model.Message) string {
	h := xxhash.New()
	h.WriteString(string(groupID))
	h.WriteString(":")
	h.WriteString(strconv.Itoa(len(messages)))
	if len(messages) > 0 {
		h.WriteString(":")
		h.WriteString(string(messages[len(messages)-1].ID))
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
