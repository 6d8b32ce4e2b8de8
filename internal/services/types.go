package services

import (
	"time"

	"github.com/soaringjerry/Raay/internal/builder"
)

// Survey is a saved survey owned by one tenant.
type Survey struct {
	ID         string           `json:"id"`
	TenantID   string           `json:"tenant_id,omitempty"`
	ShareToken string           `json:"share_token"`
	Envelope   builder.Envelope `json:"survey"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// SaveResult is what the builder gets back from a save.
type SaveResult struct {
	ID         string `json:"id"`
	ShareToken string `json:"share_token"`
	ShareURL   string `json:"share_url,omitempty"`
	Created    bool   `json:"created"`
}

type AuditEntry struct {
	Time   time.Time
	Actor  string
	Action string
	Target string
	Note   string
}
