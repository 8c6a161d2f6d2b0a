package models

// SyncEvent is pushed to dashboards after the public website config was rewritten.
type SyncEvent struct {
	Section   string `json:"section"` // all, programs, gallery, testimonials, whatsapp, social
	UpdatedAt string `json:"updatedAt"`
}

// AuthStateEvent is pushed when a staff member signs in or out.
type AuthStateEvent struct {
	UserID   string `json:"userId"`
	Email    string `json:"email,omitempty"`
	SignedIn bool   `json:"signedIn"`
}

// SyncResponse is returned by the manual sync endpoints.
type SyncResponse struct {
	Status string                 `json:"status"`
	Data   map[string]interface{} `json:"data,omitempty"`
}
