package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"uk.co.dudmesh.groupchat/internal/registry"
)

func TestHashGroups(t *testing.T) {
	assert := assert.New(t)

	groups, err := hashGroups([]string{"team=hunter2", "ops=a=b"}, bcrypt.MinCost)
	assert.Nil(err)
	assert.Len(groups, 2)
	assert.Equal("team", groups[0].ID)
	assert.Equal("ops", groups[1].ID)

	hash, err := registry.DecodeHash(groups[0].Hash)
	assert.Nil(err)
	assert.Nil(bcrypt.CompareHashAndPassword(hash, []byte("hunter2")))

	hash, err = registry.DecodeHash(groups[1].Hash)
	assert.Nil(err)
	assert.Nil(bcrypt.CompareHashAndPassword(hash, []byte("a=b")))

	line := envLine(groups)
	assert.True(strings.HasPrefix(line, "GROUPS=team:"))
	assert.Contains(line, ",ops:")
}

func TestHashGroupsErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := hashGroups([]string{"team"}, bcrypt.MinCost)
	assert.ErrorIs(err, errMalformedPair)

	_, err = hashGroups([]string{"=hunter2"}, bcrypt.MinCost)
	assert.ErrorIs(err, errMalformedPair)

	_, err = hashGroups([]string{"team="}, bcrypt.MinCost)
	assert.ErrorIs(err, errMalformedPair)

	_, err = hashGroups([]string{"team=a", "team=b"}, bcrypt.MinCost)
	assert.NotNil(err)
}

func TestReadPairs(t *testing.T) {
	pairs, err := readPairs(strings.NewReader("# groups\nteam=hunter2\n\n ops=secret \n"))
	assert.Nil(t, err)
	assert.Equal(t, []string{"team=hunter2", "ops=secret"}, pairs)
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, []groupHash{{ID: "team", Hash: "abc"}})
	assert.Contains(t, buf.String(), "team")
	assert.Contains(t, buf.String(), "abc")
}
