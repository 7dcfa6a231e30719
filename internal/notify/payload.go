package notify

// Payload is a user-facing notification. The same payload is delivered over
// the live socket ("notification" event) and serialized for Web Push.
type Payload struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	ArticleID string `json:"articleId,omitempty"`
	CommentID string `json:"commentId,omitempty"`
	URL       string `json:"url,omitempty"`
}

// pushPayload is the wire format handed to the browser push handler
type pushPayload struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Icon  string   `json:"icon"`
	Badge string   `json:"badge"`
	Data  pushData `json:"data"`
}

type pushData struct {
	URL       string `json:"url"`
	ArticleID string `json:"articleId,omitempty"`
	CommentID string `json:"commentId,omitempty"`
	Type      string `json:"type"`
}

const (
	defaultIcon  = "/assets/icons/icon-192x192.png"
	defaultBadge = "/assets/icons/badge-72x72.png"
)

func (p *Payload) toPush() pushPayload {
	url := p.URL
	if url == "" {
		url = "/"
	}
	return pushPayload{
		Title: p.Title,
		Body:  p.Message,
		Icon:  defaultIcon,
		Badge: defaultBadge,
		Data: pushData{
			URL:       url,
			ArticleID: p.ArticleID,
			CommentID: p.CommentID,
			Type:      p.Type,
		},
	}
}
