package external

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
)

type stubAdapter struct {
	name    platform.Name
	fetched int
}

func (s *stubAdapter) Name() platform.Name { return s.name }

func (s *stubAdapter) Fetch(ctx context.Context, handle platform.Handle) (*platform.RawActivity, error) {
	s.fetched++
	return &platform.RawActivity{Handle: handle}, nil
}

func TestRegistryResolve(t *testing.T) {
	cf := &stubAdapter{name: platform.Codeforces}
	registry := NewRegistry(cf)

	adapter, err := registry.Resolve(platform.Codeforces)
	require.NoError(t, err)
	assert.Equal(t, platform.Codeforces, adapter.Name())
}

func TestRegistryResolveCaseInsensitive(t *testing.T) {
	registry := NewRegistry(&stubAdapter{name: platform.Codeforces})

	adapter, err := registry.Resolve(platform.Name("  CodeForces "))
	require.NoError(t, err)
	assert.Equal(t, platform.Codeforces, adapter.Name())
}

func TestRegistryResolveUnsupported(t *testing.T) {
	cf := &stubAdapter{name: platform.Codeforces}
	registry := NewRegistry(cf)

	_, err := registry.Resolve(platform.Name("atcoder"))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUnsupportedPlatform)
	assert.Contains(t, err.Error(), "atcoder")
	assert.Zero(t, cf.fetched, "resolution must not trigger any fetch")
}

func TestRegistrySupported(t *testing.T) {
	registry := NewRegistry(
		&stubAdapter{name: platform.LeetCode},
		&stubAdapter{name: platform.Codeforces},
	)

	assert.Equal(t, []platform.Name{platform.Codeforces, platform.LeetCode}, registry.Supported())
}
