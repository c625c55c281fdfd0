package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uk.co.dudmesh.groupchat/internal/model"
	"uk.co.dudmesh.groupchat/internal/store"
)

func TestPoll(t *testing.T) {
	assert := assert.New(t)

	s, err := store.New([]model.GroupID{"team", "ops"}, store.MemoryBackend, model.Message{Author: "ChatBot", Content: "bhook++"})
	require.NoError(t, err)
	defer s.Close()

	svc := New(s)

	first, err := svc.Poll("team")
	assert.Nil(err)
	assert.Equal(model.GroupID("team"), first.GroupID)
	assert.Len(first.Messages, 1)
	assert.NotEmpty(first.Version)

	t.Run("Idempotent", func(t *testing.T) {
		again, err := svc.Poll("team")
		assert.Nil(err)
		assert.Equal(first, again)
	})

	t.Run("Version changes on append", func(t *testing.T) {
		_, err := s.Append("team", model.Message{Author: "alice", Content: "hi"})
		assert.Nil(err)

		next, err := svc.Poll("team")
		assert.Nil(err)
		assert.Len(next.Messages, 2)
		assert.NotEqual(first.Version, next.Version)
		assert.Equal(first.Messages, next.Messages[:1])
	})

	t.Run("Groups are independent", func(t *testing.T) {
		ops, err := svc.Poll("ops")
		assert.Nil(err)
		assert.Len(ops.Messages, 1)
		assert.NotEqual(first.Version, ops.Version)
	})

	t.Run("Unknown group", func(t *testing.T) {
		_, err := svc.Poll("ghost")
		assert.ErrorIs(err, model.ErrorInvalidGroup)
	})
}
