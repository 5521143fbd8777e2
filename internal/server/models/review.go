package models

import "time"

// Review is a user's write-up of an item. UserID is set at creation and
// never changes.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Item      string    `json:"item"`
	Group     string    `json:"group"`
	Tags      []string  `json:"tags"`
	Text      string    `json:"text"`
	Rating    float64   `json:"rating"`
	ImageKey  string    `json:"-"`
	HasImage  bool      `json:"has_image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImageUpload tells the owner where to PUT the image bytes.
type ImageUpload struct {
	Key       string    `json:"key"`
	URL       string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
