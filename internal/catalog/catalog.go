// Package catalog answers read-only sampler and model queries.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/horde-relay/internal/horde"
	"github.com/JakeFAU/horde-relay/internal/metrics"
)

// excludedModelMarker filters models the relay cannot drive.
const excludedModelMarker = "inpainting"

var samplers = []string{"k_euler", "k_euler_a", "k_dpm_2_a", "k_dpmpp_2s_a", "k_dpmpp_sde", "DDIM"}

// ModelLister fetches the remote model catalog.
type ModelLister interface {
	Models(ctx context.Context) ([]horde.ModelStatus, error)
}

// Catalog proxies catalog reads to the remote network.
type Catalog struct {
	lister ModelLister
	logger *zap.Logger
}

// New constructs a Catalog.
func New(lister ModelLister, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{lister: lister, logger: logger}
}

// Samplers returns the fixed sampler list.
func (c *Catalog) Samplers() []string {
	out := make([]string, len(samplers))
	copy(out, samplers)
	return out
}

// Models returns remote model names in remote order, minus inpainting models.
func (c *Catalog) Models(ctx context.Context) ([]string, error) {
	models, err := c.lister.Models(ctx)
	metrics.ObserveCatalog(err == nil)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	names := make([]string, 0, len(models))
	for _, m := range models {
		if strings.Contains(m.Name, excludedModelMarker) {
			continue
		}
		names = append(names, m.Name)
	}
	c.logger.Debug("catalog fetched", zap.Int("remote", len(models)), zap.Int("served", len(names)))
	return names, nil
}
