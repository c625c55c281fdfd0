package ingest

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"uk.co.dudmesh.groupchat/internal/content"
	"uk.co.dudmesh.groupchat/internal/model"
)

const octetStream = "application/octet-stream"

var validate = validator.New()

type Store interface {
	Append(groupID model.GroupID, message model.Message) (model.Message, error)
}

type Classifier interface {
	Classify(payload string) model.ContentKind
}

type Censor interface {
	Censor(text string) string
}

type textSubmission struct {
	GroupID model.GroupID `validate:"required"`
	Author  string        `validate:"required"`
	Text    string        `validate:"required"`
}

type attachmentSubmission struct {
	GroupID model.GroupID `validate:"required"`
	Author  string        `validate:"required"`
}

type service struct {
	store              Store
	classifier         Classifier
	censor             Censor
	maxAttachmentBytes int64
}

// New returns the ingestion pipeline. A non-positive maxAttachmentBytes
// disables the size limit.
func New(store Store, classifier Classifier, censor Censor, maxAttachmentBytes int64) *service {
	return &service{
		store:              store,
		classifier:         classifier,
		censor:             censor,
		maxAttachmentBytes: maxAttachmentBytes,
	}
}

func (s *service) SubmitText(groupID model.GroupID, author, text string) (model.Message, error) {
	if err := validate.Struct(textSubmission{groupID, author, text}); err != nil {
		return model.Message{}, fmt.Errorf("%w: %v", model.ErrorInvalidInput, err)
	}

	if s.censor != nil && s.classifier.Classify(text) == model.ContentKindText {
		text = s.censor.Censor(text)
	}

	return s.store.Append(groupID, model.Message{
		Author:  author,
		Content: text,
		Kind:    s.classifier.Classify(text),
	})
}

// SubmitAttachment inlines the attachment as a base64 data URI. Nothing is
// appended unless the whole attachment was read and encoded.
func (s *service) SubmitAttachment(groupID model.GroupID, author string, r io.Reader, declaredMimeType string) (model.Message, error) {
	if err := validate.Struct(attachmentSubmission{groupID, author}); err != nil {
		return model.Message{}, fmt.Errorf("%w: %v", model.ErrorInvalidInput, err)
	}
	if r == nil {
		return model.Message{}, fmt.Errorf("%w: no attachment", model.ErrorEncodingFailure)
	}

	data, err := s.read(r)
	if err != nil {
		return model.Message{}, err
	}

	mimeType, err := mediaType(declaredMimeType, data)
	if err != nil {
		return model.Message{}, err
	}

	var sb strings.Builder
	sb.Grow(len(content.InlineDataPrefix) + len(mimeType) + len(";base64,") + base64.StdEncoding.EncodedLen(len(data)))
	sb.WriteString(content.InlineDataPrefix)
	sb.WriteString(mimeType)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(data))

	return s.store.Append(groupID, model.Message{
		Author:  author,
		Content: sb.String(),
		Kind:    model.ContentKindImage,
	})
}

func (s *service) read(r io.Reader) ([]byte, error) {
	if s.maxAttachmentBytes > 0 {
		r = io.LimitReader(r, s.maxAttachmentBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading attachment: %v", model.ErrorEncodingFailure, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty attachment", model.ErrorEncodingFailure)
	}
	if s.maxAttachmentBytes > 0 && int64(len(data)) > s.maxAttachmentBytes {
		return nil, fmt.Errorf("%w: attachment exceeds %d bytes", model.ErrorInvalidInput, s.maxAttachmentBytes)
	}
	return data, nil
}

// mediaType trusts the declared type and only sniffs the bytes when nothing
// useful was declared. Parameters such as charset are dropped.
func mediaType(declared string, data []byte) (string, error) {
	declared = strings.TrimSpace(declared)
	if declared == "" || strings.EqualFold(declared, octetStream) {
		declared = mimetype.Detect(data).String()
	}
	mediatype, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return "", fmt.Errorf("%w: mime type %q: %v", model.ErrorInvalidInput, declared, err)
	}
	return mediatype, nil
}
