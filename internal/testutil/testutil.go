// Package testutil provides testing utilities and helpers for the portal
// client packages.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/deskware/portal-client/internal/domain/auth"
)

// IdentityBuilder provides a fluent interface for building Identity values
// for testing.
type IdentityBuilder struct {
	id domainauth.Identity
}

// NewIdentity creates an IdentityBuilder with sensible defaults.
func NewIdentity() *IdentityBuilder {
	return &IdentityBuilder{
		id: domainauth.Identity{
			Username:   "testUser",
			Email:      "testUser@email.com",
			Department: "PAYROLL",
			Roles:      []domainauth.Authority{"ROLE_PAYROLL", "GENERAL"},
		},
	}
}

// WithUsername sets the username.
func (b *IdentityBuilder) WithUsername(username string) *IdentityBuilder {
	b.id.Username = username
	return b
}

// WithDepartment sets the department display label.
func (b *IdentityBuilder) WithDepartment(dept string) *IdentityBuilder {
	b.id.Department = dept
	return b
}

// WithRoles replaces the role set.
func (b *IdentityBuilder) WithRoles(roles ...domainauth.Authority) *IdentityBuilder {
	b.id.Roles = roles
	return b
}

// Build returns the constructed Identity.
func (b *IdentityBuilder) Build() domainauth.Identity {
	return b.id
}

// SetupTestRedis creates a Redis client for testing. Tests are skipped when
// Redis is not reachable; set PORTAL_TEST_REDIS_ADDR to point at a
// non-default instance.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("PORTAL_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 9})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close redis client after ping error: %v", cerr)
		}
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		cctx, ccancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer ccancel()
		client.FlushDB(cctx)
		if err := client.Close(); err != nil {
			t.Logf("warning: failed to close redis test client: %v", err)
		}
	})
	return client
}
