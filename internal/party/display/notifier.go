package display

import (
	"context"
	"log"
	"net/http"

	"github.com/louisbranch/partyboard/internal/party/app"
)

type notificationBody struct {
	Title    string            `json:"title"`
	Fields   map[string]string `json:"fields,omitempty"`
	Severity string            `json:"severity"`
}

// Notify posts an operator event to the board's notification endpoint.
// Delivery is best effort: a failed post is logged, never propagated.
func (c *Client) Notify(ctx context.Context, event app.Notification) {
	target := c.baseURL + "/notifications"
	body := notificationBody{
		Title:    event.Title,
		Fields:   event.Fields,
		Severity: event.Severity,
	}
	if _, err := c.do(ctx, http.MethodPost, target, body); err != nil {
		log.Printf("post notification %q: %v", event.Title, err)
	}
}
