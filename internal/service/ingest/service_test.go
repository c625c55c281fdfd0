package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uk.co.dudmesh.groupchat/internal/content"
	"uk.co.dudmesh.groupchat/internal/model"
	"uk.co.dudmesh.groupchat/internal/store"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func newService(t *testing.T, maxBytes int64, censored ...string) (*service, *store.Store) {
	s, err := store.New([]model.GroupID{"team"}, store.MemoryBackend, model.Message{Author: "ChatBot", Content: "bhook++"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	moderator, err := content.NewModerator(censored)
	require.NoError(t, err)

	return New(s, content.NewClassifier(), moderator, maxBytes), s
}

func logLen(t *testing.T, s *store.Store) int {
	n, err := s.Len("team")
	require.NoError(t, err)
	return n
}

func TestSubmitText(t *testing.T) {
	t.Run("Commits plain text", func(t *testing.T) {
		assert := assert.New(t)
		svc, s := newService(t, 0)

		m, err := svc.SubmitText("team", "alice", "hi")
		assert.Nil(err)
		assert.Equal("alice", m.Author)
		assert.Equal("hi", m.Content)
		assert.Equal(model.ContentKindText, m.Kind)
		assert.NotEmpty(m.ID)
		assert.Equal(2, logLen(t, s))
	})

	t.Run("Classifies media", func(t *testing.T) {
		svc, _ := newService(t, 0)
		m, err := svc.SubmitText("team", "alice", "https://media.tenor.com/abc.gif")
		assert.Nil(t, err)
		assert.Equal(t, model.ContentKindMedia, m.Kind)
	})

	t.Run("Typed data URI is inline image", func(t *testing.T) {
		svc, _ := newService(t, 0)
		m, err := svc.SubmitText("team", "alice", "data:image/png;base64,AAAA")
		assert.Nil(t, err)
		assert.Equal(t, model.ContentKindImage, m.Kind)
	})

	t.Run("Censors plain text only", func(t *testing.T) {
		assert := assert.New(t)
		svc, _ := newService(t, 0, "badger")

		m, err := svc.SubmitText("team", "alice", "the badger")
		assert.Nil(err)
		assert.Equal("the ******", m.Content)

		m, err = svc.SubmitText("team", "alice", "https://media.tenor.com/badger.gif")
		assert.Nil(err)
		assert.Equal("https://media.tenor.com/badger.gif", m.Content)
	})

	t.Run("Rejects missing fields", func(t *testing.T) {
		assert := assert.New(t)
		svc, s := newService(t, 0)

		_, err := svc.SubmitText("team", "", "hi")
		assert.ErrorIs(err, model.ErrorInvalidInput)
		_, err = svc.SubmitText("team", "alice", "")
		assert.ErrorIs(err, model.ErrorInvalidInput)
		_, err = svc.SubmitText("", "alice", "hi")
		assert.ErrorIs(err, model.ErrorInvalidInput)
		assert.Equal(1, logLen(t, s))
	})

	t.Run("Rejects unknown group", func(t *testing.T) {
		svc, s := newService(t, 0)
		_, err := svc.SubmitText("ghost", "alice", "hi")
		assert.ErrorIs(t, err, model.ErrorInvalidGroup)
		assert.Equal(t, 1, logLen(t, s))
	})
}

func TestSubmitAttachment(t *testing.T) {
	png := []byte{0x89, 'P', 'N'}

	t.Run("Inlines declared type", func(t *testing.T) {
		assert := assert.New(t)
		svc, s := newService(t, 1024)

		m, err := svc.SubmitAttachment("team", "alice", bytes.NewReader(png), "image/png")
		assert.Nil(err)
		assert.Equal(model.ContentKindImage, m.Kind)
		assert.Equal("data:image/png;base64,iVBO", m.Content)
		assert.True(strings.HasPrefix(m.Content, "data:image/png;base64,"))
		assert.Equal(2, logLen(t, s))
	})

	t.Run("Drops mime parameters", func(t *testing.T) {
		svc, _ := newService(t, 1024)
		m, err := svc.SubmitAttachment("team", "alice", bytes.NewReader(png), "Image/PNG; name=x.png")
		assert.Nil(t, err)
		assert.True(t, strings.HasPrefix(m.Content, "data:image/png;base64,"))
	})

	t.Run("Sniffs missing type", func(t *testing.T) {
		svc, _ := newService(t, 1024)
		gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
		m, err := svc.SubmitAttachment("team", "alice", bytes.NewReader(gif), "")
		assert.Nil(t, err)
		assert.True(t, strings.HasPrefix(m.Content, "data:image/gif;base64,"))
		assert.Equal(t, model.ContentKindImage, m.Kind)
	})

	t.Run("Read failure", func(t *testing.T) {
		svc, s := newService(t, 1024)
		_, err := svc.SubmitAttachment("team", "alice", failingReader{}, "image/png")
		assert.ErrorIs(t, err, model.ErrorEncodingFailure)
		assert.Equal(t, 1, logLen(t, s))
	})

	t.Run("Empty and nil attachment", func(t *testing.T) {
		svc, s := newService(t, 1024)
		_, err := svc.SubmitAttachment("team", "alice", bytes.NewReader(nil), "image/png")
		assert.ErrorIs(t, err, model.ErrorEncodingFailure)
		_, err = svc.SubmitAttachment("team", "alice", nil, "image/png")
		assert.ErrorIs(t, err, model.ErrorEncodingFailure)
		assert.Equal(t, 1, logLen(t, s))
	})

	t.Run("Too large", func(t *testing.T) {
		svc, s := newService(t, 2)
		_, err := svc.SubmitAttachment("team", "alice", bytes.NewReader(png), "image/png")
		assert.ErrorIs(t, err, model.ErrorInvalidInput)
		assert.Equal(t, 1, logLen(t, s))
	})

	t.Run("Bad declared type", func(t *testing.T) {
		svc, s := newService(t, 1024)
		_, err := svc.SubmitAttachment("team", "alice", bytes.NewReader(png), "not a mime/")
		assert.ErrorIs(t, err, model.ErrorInvalidInput)
		assert.Equal(t, 1, logLen(t, s))
	})

	t.Run("Missing author and unknown group", func(t *testing.T) {
		svc, s := newService(t, 1024)
		_, err := svc.SubmitAttachment("team", "", bytes.NewReader(png), "image/png")
		assert.ErrorIs(t, err, model.ErrorInvalidInput)
		_, err = svc.SubmitAttachment("ghost", "alice", bytes.NewReader(png), "image/png")
		assert.ErrorIs(t, err, model.ErrorInvalidGroup)
		assert.Equal(t, 1, logLen(t, s))
	})
}
