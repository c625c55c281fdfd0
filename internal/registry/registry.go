package registry

import (
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"uk.co.dudmesh.groupchat/internal/model"
)

// registry is read-only once New returns.
type registry struct {
	groups map[model.GroupID]model.Group
}

// New builds the registry from group id to base64 encoded bcrypt hash.
func New(groups map[string]string) (*registry, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("no groups configured")
	}

	r := &registry{groups: make(map[model.GroupID]model.Group, len(groups))}
	for id, hash := range groups {
		if id == "" {
			return nil, fmt.Errorf("empty group id")
		}
		if _, err := DecodeHash(hash); err != nil {
			return nil, fmt.Errorf("group %q: %w", id, err)
		}
		r.groups[model.GroupID(id)] = model.Group{
			ID:             model.GroupID(id),
			CredentialHash: hash,
		}
	}
	return r, nil
}

func (r *registry) Lookup(id model.GroupID) (model.Group, error) {
	group, ok := r.groups[id]
	if !ok {
		return model.Group{}, model.ErrorGroupNotFound
	}
	return group, nil
}

func (r *registry) IDs() []model.GroupID {
	ids := lo.Keys(r.groups)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// EncodeHash produces the stored form of a bcrypt hash.
func EncodeHash(hash []byte) string {
	return base64.StdEncoding.EncodeToString(hash)
}

func DecodeHash(encoded string) ([]byte, error) {
	hash, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding credential hash: %w", err)
	}
	if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid bcrypt hash: %w", err)
	}
	return hash, nil
}
