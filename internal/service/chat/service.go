package chat

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/labstack/gommon/log"
	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"uk.co.dudmesh.groupchat/internal/boot"
	"uk.co.dudmesh.groupchat/internal/content"
	"uk.co.dudmesh.groupchat/internal/metrics"
	"uk.co.dudmesh.groupchat/internal/model"
	"uk.co.dudmesh.groupchat/internal/registry"
	"uk.co.dudmesh.groupchat/internal/service/access"
	"uk.co.dudmesh.groupchat/internal/service/feed"
	"uk.co.dudmesh.groupchat/internal/service/ingest"
	"uk.co.dudmesh.groupchat/internal/store"
)

var tracer = otel.Tracer("chat")

type AccessControl interface {
	Verify(groupID model.GroupID, password string) error
}

type Ingestor interface {
	SubmitText(groupID model.GroupID, author, text string) (model.Message, error)
	SubmitAttachment(groupID model.GroupID, author string, r io.Reader, declaredMimeType string) (model.Message, error)
}

type Feed interface {
	Poll(groupID model.GroupID) (model.Feed, error)
}

// Service is constructed once at startup and shared by every request
// handler. It owns all chat state.
type Service struct {
	access  AccessControl
	ingest  Ingestor
	feed    Feed
	closer  io.Closer
	metrics *metrics.Metrics
	logger  *log.Logger
}

type Deps struct {
	Access  AccessControl
	Ingest  Ingestor
	Feed    Feed
	Closer  io.Closer
	Metrics *metrics.Metrics
	Logger  *log.Logger
}

func New(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = log.New("chat")
	}
	return &Service{
		access:  deps.Access,
		ingest:  deps.Ingest,
		feed:    deps.Feed,
		closer:  deps.Closer,
		metrics: deps.Metrics,
		logger:  logger,
	}
}

// NewFromConfig wires the registry, store and pipelines described by config.
func NewFromConfig(config *boot.Config, m *metrics.Metrics, logger *log.Logger) (*Service, error) {
	groups, err := registry.New(config.Groups)
	if err != nil {
		return nil, fmt.Errorf("building group registry: %w", err)
	}

	backend, err := store.BackendFor(config.Store.Backend)
	if err != nil {
		return nil, fmt.Errorf("selecting store backend: %w", err)
	}

	classifier := content.NewClassifier()
	welcome := model.Message{
		Author:  config.Store.WelcomeAuthor,
		Content: config.Store.WelcomeText,
		Kind:    classifier.Classify(config.Store.WelcomeText),
	}
	messages, err := store.New(groups.IDs(), backend, welcome)
	if err != nil {
		return nil, fmt.Errorf("creating message store: %w", err)
	}

	acl, err := access.New(groups)
	if err != nil {
		messages.Close()
		return nil, fmt.Errorf("creating access control: %w", err)
	}

	moderator, err := content.NewModerator(config.Ingest.CensoredWords)
	if err != nil {
		messages.Close()
		return nil, fmt.Errorf("creating moderator: %w", err)
	}

	return New(Deps{
		Access:  acl,
		Ingest:  ingest.New(messages, classifier, moderator, config.Ingest.AttachmentMaxBytes),
		Feed:    feed.New(messages),
		Closer:  messages,
		Metrics: m,
		Logger:  logger,
	}), nil
}

func (s *Service) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// CheckGroupAccess returns nil when password opens the group and
// model.ErrorAccessDenied otherwise. It does not start a session.
func (s *Service) CheckGroupAccess(ctx context.Context, groupID model.GroupID, password string) error {
	_, span := tracer.Start(ctx, "Chat.Service.CheckGroupAccess", groupAttr(groupID))
	defer span.End()

	err := s.access.Verify(groupID, password)
	if err != nil {
		s.countAccess("denied")
		s.logger.Warnf("access denied for group %q", groupID)
		span.RecordError(pkgerrors.Wrap(err, "Chat.Service.CheckGroupAccess: s.access.Verify failed"))
		return err
	}
	s.countAccess("granted")
	return nil
}

func (s *Service) ListMessages(ctx context.Context, groupID model.GroupID) (model.Feed, error) {
	_, span := tracer.Start(ctx, "Chat.Service.ListMessages", groupAttr(groupID))
	defer span.End()

	f, err := s.feed.Poll(groupID)
	if err != nil {
		span.RecordError(pkgerrors.Wrap(err, "Chat.Service.ListMessages: s.feed.Poll failed"))
		return model.Feed{}, err
	}
	span.SetAttributes(attribute.Int("Messages", len(f.Messages)))
	return f, nil
}

func (s *Service) PostText(ctx context.Context, groupID model.GroupID, author, text string) (model.Message, error) {
	_, span := tracer.Start(ctx, "Chat.Service.PostText", groupAttr(groupID))
	defer span.End()

	m, err := s.ingest.SubmitText(groupID, author, text)
	if err != nil {
		span.RecordError(pkgerrors.Wrap(err, "Chat.Service.PostText: s.ingest.SubmitText failed"))
		s.logRejected(groupID, err)
		return model.Message{}, err
	}
	s.committed(groupID, m)
	return m, nil
}

func (s *Service) PostAttachment(ctx context.Context, groupID model.GroupID, author string, r io.Reader, mimeType string) (model.Message, error) {
	_, span := tracer.Start(ctx, "Chat.Service.PostAttachment", groupAttr(groupID))
	defer span.End()

	m, err := s.ingest.SubmitAttachment(groupID, author, r, mimeType)
	if err != nil {
		span.RecordError(pkgerrors.Wrap(err, "Chat.Service.PostAttachment: s.ingest.SubmitAttachment failed"))
		s.logRejected(groupID, err)
		return model.Message{}, err
	}
	s.committed(groupID, m)
	return m, nil
}

func (s *Service) committed(groupID model.GroupID, m model.Message) {
	if s.metrics != nil {
		s.metrics.MessagesCommitted.WithLabelValues(m.Kind.String()).Inc()
	}
	s.logger.Debugf("committed %s message %s to group %q", m.Kind, m.ID, groupID)
}

func (s *Service) logRejected(groupID model.GroupID, err error) {
	switch {
	case errors.Is(err, model.ErrorInvalidGroup),
		errors.Is(err, model.ErrorInvalidInput),
		errors.Is(err, model.ErrorEncodingFailure):
		s.logger.Infof("rejected write to group %q: %v", groupID, err)
	default:
		s.logger.Errorf("write to group %q failed: %+v", groupID, err)
	}
}

func (s *Service) countAccess(result string) {
	if s.metrics != nil {
		s.metrics.AccessChecks.WithLabelValues(result).Inc()
	}
}

func groupAttr(groupID model.GroupID) trace.SpanStartOption {
	return trace.WithAttributes(attribute.String("GroupID", string(groupID)))
}
