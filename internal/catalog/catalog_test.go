package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/horde-relay/internal/horde"
)

type fakeLister struct {
	models []horde.ModelStatus
	err    error
}

func (f *fakeLister) Models(context.Context) ([]horde.ModelStatus, error) {
	return f.models, f.err
}

func TestCatalog_SamplersFixedOrder(t *testing.T) {
	t.Parallel()

	c := New(&fakeLister{}, nil)
	want := []string{"k_euler", "k_euler_a", "k_dpm_2_a", "k_dpmpp_2s_a", "k_dpmpp_sde", "DDIM"}
	require.Equal(t, want, c.Samplers())

	got := c.Samplers()
	got[0] = "mutated"
	require.Equal(t, want, c.Samplers(), "callers must not be able to mutate the list")
}

func TestCatalog_ModelsExcludesInpainting(t *testing.T) {
	t.Parallel()

	c := New(&fakeLister{models: []horde.ModelStatus{
		{Name: "A"}, {Name: "B-inpainting"}, {Name: "C"},
	}}, nil)

	names, err := c.Models(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"A", "C"}, names)
}

func TestCatalog_ModelsEmpty(t *testing.T) {
	t.Parallel()

	names, err := New(&fakeLister{}, nil).Models(context.Background())
	require.NoError(t, err)
	require.Empty(t, names)
	require.NotNil(t, names)
}

func TestCatalog_ModelsPropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := New(&fakeLister{err: boom}, nil).Models(context.Background())
	require.ErrorIs(t, err, boom)
}
