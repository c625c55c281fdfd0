package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const writeWait = 10 * time.Second

// CheckOrigin accepts same-origin requests, requests without an Origin header
// and any origin in allowed. "*" allows everything, as it does for CORS.
func CheckOrigin(allowed []string) func(r *http.Request) bool {
	wildcard := false
	origins := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		origin = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(origin), "/"))
		if origin == "*" {
			wildcard = true
		}
		origins[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return origins[strings.ToLower(strings.TrimSuffix(origin, "/"))]
	}
}

// Stream pushes the full log over a websocket whenever it changes. It checks
// the feed every interval and is an alternative to polling ListMessages, not a
// replacement. Streams end when the client goes away or done is closed.
// Cross-origin upgrades follow the same allowed origins as CORS.
func Stream(chat ChatService, interval time.Duration, origins []string, done <-chan struct{}) echo.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     CheckOrigin(origins),
	}

	return func(c echo.Context) error {
		ctx := c.Request().Context()
		groupID := groupParam(c)

		feed, err := chat.ListMessages(ctx, groupID)
		if err != nil {
			return toHTTPError(err)
		}

		ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			c.Logger().Warnf("websocket upgrade: %v", err)
			return nil
		}
		defer ws.Close()

		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteJSON(feed.Messages); err != nil {
			return nil
		}
		last := feed.Version

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gone:
				return nil
			case <-done:
				ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				return nil
			case <-ticker.C:
				feed, err := chat.ListMessages(ctx, groupID)
				if err != nil {
					c.Logger().Errorf("polling group %q: %+v", groupID, err)
					return nil
				}
				if feed.Version == last {
					continue
				}
				last = feed.Version
				ws.SetWriteDeadline(time.Now().Add(writeWait))
				if err := ws.WriteJSON(feed.Messages); err != nil {
					return nil
				}
			}
		}
	}
}
