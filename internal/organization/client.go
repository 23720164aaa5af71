package organization

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"mdhub/internal/config"
	"mdhub/internal/constants"
	"mdhub/pkg/circuitbreaker"
	"mdhub/pkg/metrics"
)

// HTTPResolver calls the external organization resolution service, protected
// by a circuit breaker so a flapping collaborator fails fast instead of
// stalling every ingestion.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
	breaker *circuitbreaker.Wrapper
}

func NewHTTPResolver(cfg config.ResolverConfig) *HTTPResolver {
	return &HTTPResolver{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig("organization_resolver")),
	}
}

func (r *HTTPResolver) Resolve(ctx context.Context, clientID string) (*Organization, error) {
	result, err := r.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
		return r.fetch(ctx, clientID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Organization), nil
}

func (r *HTTPResolver) fetch(ctx context.Context, clientID string) (*Organization, error) {
	endpoint := fmt.Sprintf("%s/clients/%s/organization", r.baseURL, url.PathEscape(clientID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver request: %w", err)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	metrics.ObserveCollaboratorDuration("organization_resolver", time.Since(start))
	if err != nil {
		metrics.CollaboratorRequestsTotal.WithLabelValues("organization_resolver", "error").Inc()
		return nil, fmt.Errorf("organization resolver request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		metrics.CollaboratorRequestsTotal.WithLabelValues("organization_resolver", "error").Inc()
		return nil, fmt.Errorf("organization resolver returned status: %d", resp.StatusCode)
	}

	var org Organization
	if err := json.NewDecoder(resp.Body).Decode(&org); err != nil {
		metrics.CollaboratorRequestsTotal.WithLabelValues("organization_resolver", "error").Inc()
		return nil, fmt.Errorf("failed to decode organization: %w", err)
	}

	if org.ID == "" {
		metrics.CollaboratorRequestsTotal.WithLabelValues("organization_resolver", "error").Inc()
		return nil, fmt.Errorf("organization resolver returned no organization id for client %s", clientID)
	}

	metrics.CollaboratorRequestsTotal.WithLabelValues("organization_resolver", "ok").Inc()
	return &org, nil
}
