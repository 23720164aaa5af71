package redaction

import "context"

// Rule is an organization-scoped data privacy policy. CanStore=false means
// the addressed field must not be retained in the hub's own store.
type Rule struct {
	// Path addresses the field in the flat document (JSONPath).
	Path string `json:"path"`
	// XPath optionally pins the equivalent tree-document path. When empty
	// the path is derived via ToXMLPath.
	XPath string `json:"xpath,omitempty"`
	// Match is a wildcard-glob tested against the values selected by Path.
	// Empty means "*" (any present value matches).
	Match    string `json:"match,omitempty"`
	CanStore bool   `json:"canStore"`
	Priority int    `json:"priority"`
}

// Source supplies the ordered rule list for an organization and document
// kind. Rules are fetched fresh per ingestion; an empty list is valid and
// means no redaction.
type Source interface {
	Rules(ctx context.Context, organizationID, documentKind string) ([]Rule, error)
}
