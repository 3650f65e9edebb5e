package strategy

import (
	"errors"
	"testing"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/domain/shared/strategy"
	"github.com/erp/procurement/internal/infrastructure/strategy/cost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryWithDefaults(t *testing.T) {
	r, err := NewRegistryWithDefaults("")
	require.NoError(t, err)

	assert.Equal(t, []string{"fifo", "moving_average"}, r.ListCostStrategies())

	s, err := r.GetCostStrategy("")
	require.NoError(t, err)
	assert.Equal(t, strategy.CostMethodFIFO, s.Method())
}

func TestNewRegistryWithDefaults_MovingAverage(t *testing.T) {
	r, err := NewRegistryWithDefaults("moving_average")
	require.NoError(t, err)

	s, err := r.GetCostStrategy("")
	require.NoError(t, err)
	assert.Equal(t, strategy.CostMethodMovingAverage, s.Method())
}

func TestNewRegistryWithDefaults_UnknownDefault(t *testing.T) {
	_, err := NewRegistryWithDefaults("lifo")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestStrategyRegistry_DuplicateRegistration(t *testing.T) {
	r := NewStrategyRegistry()
	require.NoError(t, r.RegisterCostStrategy(cost.NewFIFOCostStrategy()))

	err := r.RegisterCostStrategy(cost.NewFIFOCostStrategy())
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
}

func TestStrategyRegistry_NoDefault(t *testing.T) {
	r := NewStrategyRegistry()
	_, err := r.GetCostStrategy("")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
