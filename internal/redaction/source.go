package redaction

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"mdhub/internal/config"
	"mdhub/internal/constants"
	"mdhub/pkg/metrics"
)

// HTTPSource fetches rules from the external data-privacy-rules service.
// Rules are deliberately not cached: a policy change must apply to the very
// next ingestion.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(cfg config.RuleSourceConfig) *HTTPSource {
	return &HTTPSource{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (s *HTTPSource) Rules(ctx context.Context, organizationID, documentKind string) ([]Rule, error) {
	endpoint := fmt.Sprintf("%s/organizations/%s/data-privacy-rules?documentKind=%s",
		s.baseURL,
		url.PathEscape(organizationID),
		url.QueryEscape(documentKind),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule source request: %w", err)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.ObserveCollaboratorDuration("rule_source", time.Since(start))
	if err != nil {
		metrics.CollaboratorRequestsTotal.WithLabelValues("rule_source", "error").Inc()
		return nil, fmt.Errorf("rule source request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		metrics.CollaboratorRequestsTotal.WithLabelValues("rule_source", "error").Inc()
		return nil, fmt.Errorf("rule source returned status: %d", resp.StatusCode)
	}

	var rules []Rule
	if err := json.NewDecoder(resp.Body).Decode(&rules); err != nil {
		metrics.CollaboratorRequestsTotal.WithLabelValues("rule_source", "error").Inc()
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	metrics.CollaboratorRequestsTotal.WithLabelValues("rule_source", "ok").Inc()
	return rules, nil
}
