package organization

import "context"

// Organization is the owning party resolved from a client identifier.
type Organization struct {
	ID     string `json:"organizationId"`
	Name   string `json:"organizationName"`
	Source string `json:"sourceName"`
}

// Resolver maps a client identifier to its owning organization.
type Resolver interface {
	Resolve(ctx context.Context, clientID string) (*Organization, error)
}
