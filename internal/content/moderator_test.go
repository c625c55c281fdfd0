package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeratorCensor(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"badger", "mushroom"})
	req.NoError(err)
	req.True(mod.Enabled())

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"clean text", "all quiet here", "all quiet here"},
		{"single word", "The badger is here", "The ****** is here"},
		{"repeated", "badger badger", "****** ******"},
		{"case and punctuation", "a B.A.D.G.E.R!", "a ***********!"},
		{"utf8 around match", "été mushroom été", "été ******** été"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, mod.Censor(tc.input))
		})
	}
}

func TestModeratorDisabled(t *testing.T) {
	req := require.New(t)

	mod, err := NewModerator(nil)
	req.NoError(err)
	req.False(mod.Enabled())
	req.Equal("badger", mod.Censor("badger"))

	mod, err = NewModerator([]string{" ", "..."})
	req.NoError(err)
	req.False(mod.Enabled())
}
