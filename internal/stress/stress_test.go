package stress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAllScenarios(t *testing.T) {
	cfg := Config{Workers: 4, Iterations: 50}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			r, err := Run(name, cfg)
			require.NoError(t, err)

			assert.Equal(t, name, r.Scenario)
			assert.NotEmpty(t, r.RunID)
			assert.Equal(t, cfg.Workers, r.Workers)
			assert.Positive(t, r.Ops)
			assert.Zero(t, r.Errors, "scenario %s reported invariant violations", name)
		})
	}
}

func TestRunUnknownScenario(t *testing.T) {
	_, err := Run("no-such-scenario", Config{Workers: 1, Iterations: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scenario")
}

func TestRunRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "zero workers", cfg: Config{Workers: 0, Iterations: 10}},
		{name: "zero iterations", cfg: Config{Workers: 2, Iterations: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run("mutex", tt.cfg)
			require.Error(t, err)
		})
	}
}

func TestNamesSortedAndComplete(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "mutex")
	assert.Contains(t, names, "arc-churn")
	assert.Contains(t, names, "taint")
}
