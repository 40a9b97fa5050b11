package api

import "github.com/joestump/linkstash/internal/store"

// --- Requests ---

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// createLinkRequest deliberately has no owner field: whatever the caller
// sends, the link belongs to the authenticated requester.
type createLinkRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// updateLinkRequest is a partial update: nil means "leave unchanged",
// never "clear".
type updateLinkRequest struct {
	URL         *string   `json:"url"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

// --- Responses ---

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// pageResponse is the paginated shape for link listings.
type pageResponse struct {
	Success    bool          `json:"success"`
	Count      int           `json:"count"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	HasMore    bool          `json:"hasMore"`
	Data       []*store.Link `json:"data"`
}

type tagsResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Data    []store.TagCount `json:"data"`
}
