package health

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	name string
	err  error
}

func (c *stubChecker) Name() string                    { return c.name }
func (c *stubChecker) Check(ctx context.Context) error { return c.err }

func TestCheckerRegistry_AllHealthy(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(&stubChecker{name: "postgresql"})
	registry.RegisterOptional(&stubChecker{name: "redis"})

	h := registry.Check(context.Background())
	assert.Equal(t, StatusHealthy, h.Status)
	assert.Equal(t, StatusHealthy, h.Checks["postgresql"].Status)
	assert.Equal(t, StatusHealthy, h.Checks["redis"].Status)
}

func TestCheckerRegistry_OptionalFailureDegrades(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(&stubChecker{name: "postgresql"})
	registry.RegisterOptional(&stubChecker{name: "redis", err: fmt.Errorf("redis ping failed")})

	h := registry.Check(context.Background())
	assert.Equal(t, StatusDegraded, h.Status)
	assert.Equal(t, StatusDegraded, h.Checks["redis"].Status)
	assert.Equal(t, "redis ping failed", h.Checks["redis"].Message)
}

func TestCheckerRegistry_CriticalFailureWinsOverDegraded(t *testing.T) {
	registry := NewCheckerRegistry()
	registry.Register(&stubChecker{name: "broker", err: fmt.Errorf("broker unavailable")})
	registry.RegisterOptional(&stubChecker{name: "redis", err: fmt.Errorf("redis ping failed")})

	h := registry.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, h.Status)
	assert.Equal(t, StatusUnhealthy, h.Checks["broker"].Status)
	assert.Equal(t, StatusDegraded, h.Checks["redis"].Status)
}
