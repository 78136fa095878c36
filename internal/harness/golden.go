package harness

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// RunWithGolden runs the scenario at path and compares its trace with
// testdata/golden/<name>.golden. Run tests with -update to rewrite goldens.
func RunWithGolden(t *testing.T, scenarioPath string) *Result {
	t.Helper()

	scenario, err := LoadScenario(scenarioPath)
	require.NoError(t, err, "failed to load scenario")

	result, err := Run(scenario)
	require.NoError(t, err, "failed to run scenario")

	name := scenario.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(scenarioPath), filepath.Ext(scenarioPath))
	}
	AssertGolden(t, name, result)
	return result
}

// AssertGolden compares result, as indented JSON, with a golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	data, err := json.MarshalIndent(result, "", "  ")
	require.NoError(t, err, "failed to marshal result")
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
