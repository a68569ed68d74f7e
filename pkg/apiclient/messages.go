package apiclient

import (
	"net/url"

	"github.com/marmos91/rowguard/pkg/models"
)

// SendMessageRequest is the body of SendMessage. An empty FromUserID is
// filled with the caller; any other sender is refused.
type SendMessageRequest struct {
	FromUserID string `json:"from_user_id,omitempty"`
	ToUserID   string `json:"to_user_id"`
	Body       string `json:"body"`
}

// MessageFilter narrows ListMessages and DeleteMessages.
type MessageFilter struct {
	FromUserID string
	ToUserID   string
}

func (f MessageFilter) query() url.Values {
	return url.Values{"from_user_id": {f.FromUserID}, "to_user_id": {f.ToUserID}}
}

func (c *Client) SendMessage(req SendMessageRequest) (*models.Message, error) {
	return createResource[models.Message](c, "/api/v1/messages", req)
}

// ListMessages returns the messages the caller sent or received.
func (c *Client) ListMessages(f MessageFilter) ([]models.Message, error) {
	return listResources[models.Message](c, withQuery("/api/v1/messages", f.query()))
}

func (c *Client) GetMessage(id string) (*models.Message, error) {
	return getResource[models.Message](c, resourcePath("/api/v1/messages/%s", id))
}

// UpdateMessage edits the body of a message the caller sent.
func (c *Client) UpdateMessage(id, body string) (*models.Message, error) {
	return patchResource[models.Message](c, resourcePath("/api/v1/messages/%s", id),
		map[string]string{"body": body})
}

func (c *Client) DeleteMessage(id string) error {
	return c.delete(resourcePath("/api/v1/messages/%s", id), nil)
}

func (c *Client) DeleteMessages(f MessageFilter) (int64, error) {
	var n count
	if err := c.delete(withQuery("/api/v1/messages", f.query()), &n); err != nil {
		return 0, err
	}
	return n.Count, nil
}
