// Package content tags message payloads with the kind clients use to render
// them. Classification is string matching only and is not a security
// boundary: a text message that happens to look like a media URL renders as
// media.
package content

import (
	"strings"

	"uk.co.dudmesh.groupchat/internal/model"
)

const InlineDataPrefix = "data:"

var (
	DefaultMediaPrefixes = []string{
		"https://media.tenor.com/",
		"https://c.tenor.com/",
		"https://media.giphy.com/",
	}
	DefaultMediaSegments = []string{"/media/", "/mediaformats/"}
	DefaultAPIHosts      = []string{"tenor.googleapis.com"}
)

type Classifier struct {
	MediaPrefixes []string
	MediaSegments []string
	APIHosts      []string
}

func NewClassifier() *Classifier {
	return &Classifier{
		MediaPrefixes: DefaultMediaPrefixes,
		MediaSegments: DefaultMediaSegments,
		APIHosts:      DefaultAPIHosts,
	}
}

func (c *Classifier) Classify(payload string) model.ContentKind {
	if strings.HasPrefix(payload, InlineDataPrefix) {
		return model.ContentKindImage
	}
	if c.isRemoteMedia(payload) {
		return model.ContentKindMedia
	}
	return model.ContentKindText
}

func (c *Classifier) isRemoteMedia(payload string) bool {
	for _, prefix := range c.MediaPrefixes {
		if strings.HasPrefix(payload, prefix) {
			return true
		}
	}
	for _, segment := range c.MediaSegments {
		if strings.Contains(payload, segment) {
			return true
		}
	}
	if strings.HasSuffix(strings.ToLower(payload), ".gif") {
		return true
	}
	for _, host := range c.APIHosts {
		if strings.Contains(payload, host) {
			return true
		}
	}
	return false
}
