package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"uk.co.dudmesh.groupchat/internal/model"
)

type ChatService interface {
	AccessChecker
	ListMessages(ctx context.Context, groupID model.GroupID) (model.Feed, error)
	PostText(ctx context.Context, groupID model.GroupID, author, text string) (model.Message, error)
	PostAttachment(ctx context.Context, groupID model.GroupID, author string, r io.Reader, mimeType string) (model.Message, error)
}

type textRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

func etag(version string) string {
	return `"` + version + `"`
}

// ListMessages returns the full log. Clients poll it; If-None-Match with the
// last ETag turns an unchanged poll into a 304.
func ListMessages(chat ChatService) echo.HandlerFunc {
	return func(c echo.Context) error {
		feed, err := chat.ListMessages(c.Request().Context(), groupParam(c))
		if err != nil {
			return toHTTPError(err)
		}

		tag := etag(feed.Version)
		c.Response().Header().Set("Cache-Control", "no-cache")
		c.Response().Header().Set("ETag", tag)
		if c.Request().Header.Get("If-None-Match") == tag {
			return c.NoContent(http.StatusNotModified)
		}

		messages := feed.Messages
		if messages == nil {
			messages = []model.Message{}
		}
		return c.JSON(http.StatusOK, messages)
	}
}

func PostText(chat ChatService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &textRequest{}
		if err := c.Bind(params); err != nil {
			return err
		}
		message, err := chat.PostText(c.Request().Context(), groupParam(c), params.Author, params.Text)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(http.StatusCreated, message)
	}
}

// PostAttachment takes a multipart form with an author field and a file part.
// The part's Content-Type is the declared MIME type unless a mimeType field
// overrides it.
func PostAttachment(chat ChatService) echo.HandlerFunc {
	return func(c echo.Context) error {
		header, err := c.FormFile("file")
		if err != nil {
			return toHTTPError(fmt.Errorf("%w: missing file: %v", model.ErrorInvalidInput, err))
		}
		file, err := header.Open()
		if err != nil {
			return toHTTPError(fmt.Errorf("%w: opening upload: %v", model.ErrorEncodingFailure, err))
		}
		defer file.Close()

		mimeType := c.FormValue("mimeType")
		if mimeType == "" {
			mimeType = header.Header.Get(echo.HeaderContentType)
		}

		message, err := chat.PostAttachment(c.Request().Context(), groupParam(c), c.FormValue("author"), file, mimeType)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(http.StatusCreated, message)
	}
}
