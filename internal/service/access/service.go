// Package access verifies group passwords.
//
// Security caveat: a successful check only gates entry into the chat UI. It
// does not create a session, and reading or posting messages requires nothing
// but the group id. Anyone who learns a group id can use that group.
package access

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"uk.co.dudmesh.groupchat/internal/model"
	"uk.co.dudmesh.groupchat/internal/registry"
)

type Registry interface {
	Lookup(id model.GroupID) (model.Group, error)
	IDs() []model.GroupID
}

type service struct {
	registry  Registry
	dummyHash []byte
}

func New(r Registry) (*service, error) {
	cost := bcrypt.DefaultCost
	for _, id := range r.IDs() {
		group, err := r.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("looking up group %s: %w", id, err)
		}
		hash, err := registry.DecodeHash(group.CredentialHash)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", id, err)
		}
		if c, err := bcrypt.Cost(hash); err == nil && c > cost {
			cost = c
		}
	}

	// unknown groups are checked against this so they cost the same as a
	// wrong password
	dummyHash, err := bcrypt.GenerateFromPassword([]byte(model.CreateID()), cost)
	if err != nil {
		return nil, fmt.Errorf("generating dummy hash: %w", err)
	}
	return &service{registry: r, dummyHash: dummyHash}, nil
}

// Verify returns nil when password is the group's secret and
// model.ErrorAccessDenied otherwise, including for unknown groups.
func (s *service) Verify(groupID model.GroupID, password string) error {
	hash := s.dummyHash
	known := false

	group, err := s.registry.Lookup(groupID)
	if err == nil {
		if decoded, err := registry.DecodeHash(group.CredentialHash); err == nil {
			hash = decoded
			known = true
		}
	}

	err = bcrypt.CompareHashAndPassword(hash, []byte(password))
	if err != nil || !known {
		return model.ErrorAccessDenied
	}
	return nil
}
