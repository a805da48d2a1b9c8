package presets

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rewriterc/pkg/rules"
	"github.com/walteh/rewriterc/pkg/text"
)

func TestNames(t *testing.T) {
	names := Names()
	assert.True(t, sort.StringsAreSorted(names))
	assert.Equal(t, []string{
		"api-contract-types",
		"css-variables-v4",
		"dedupe-logger-import",
		"orphaned-error-props",
	}, names)
	assert.Len(t, All(), len(names))
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("css-variables-v4")
	require.True(t, ok)
	assert.Equal(t, "css-variables-v4", p.Name)
	assert.NotEmpty(t, p.Rules)

	_, ok = Lookup("missing")
	assert.False(t, ok)
}

func TestPresetsCompile(t *testing.T) {
	for _, p := range All() {
		t.Run(p.Name, func(t *testing.T) {
			set, err := rules.Compile(p.Rules)
			require.NoError(t, err)
			assert.Equal(t, len(p.Rules), set.Len())
			assert.NotEmpty(t, p.Description)
			assert.NotEmpty(t, p.Extensions)
		})
	}
}

func TestPresetScenarios(t *testing.T) {
	tests := []struct {
		preset string
		input  string
		want   string
	}{
		{
			preset: "css-variables-v4",
			input:  ".a { border: 1px solid var(--border); color: var(--foreground); }\n",
			want:   ".a { border: 1px solid var(--color-border); color: var(--color-foreground); }\n",
		},
		{
			preset: "api-contract-types",
			input:  "const r: UpdateMaintenanceRequest = x; // UpdateMaintenanceRequests\n",
			want:   "const r: MaintenanceRequestUpdate = x; // UpdateMaintenanceRequests\n",
		},
		{
			preset: "dedupe-logger-import",
			input:  "import { logger } from '@/lib/logger'\nimport x from 'x'\nimport { logger } from '@/lib/logger'\n",
			want:   "import { logger } from '@/lib/logger'\nimport x from 'x'\n",
		},
		{
			preset: "orphaned-error-props",
			input: "  this.handleErrorEnhanced(error)\n" +
				"    operation: 'create',\n" +
				"    resource: 'lease' })\n" +
				"  return { success: false, error: msg }\n",
			want: "  this.handleErrorEnhanced(error)\n" +
				"  return { success: false, error: msg }\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			p, ok := Lookup(tt.preset)
			require.True(t, ok)
			set, err := rules.Compile(p.Rules)
			require.NoError(t, err)

			res := text.Apply(tt.input, set)
			assert.Equal(t, tt.want, res.Content)
			assert.True(t, res.WasModified)
			assert.NoError(t, text.CheckFixedPoint(res.Content, set))

			again := text.Apply(res.Content, set)
			assert.False(t, again.WasModified)
			assert.Equal(t, res.Content, again.Content)
		})
	}
}

func TestPresetSpecs(t *testing.T) {
	p, ok := Lookup("api-contract-types")
	require.True(t, ok)

	specs := p.Specs()
	require.Len(t, specs, len(p.Rules))
	for _, spec := range specs {
		assert.Equal(t, p.Extensions, spec.Extensions)
		assert.Equal(t, p.Exclude, spec.Exclude)
	}
	assert.Empty(t, p.Rules[0].Exclude, "Specs must not modify the registered rules")

	set, err := rules.Compile(specs)
	require.NoError(t, err)
	assert.Zero(t, set.ForFile("src/api-contracts.ts").Len())
	assert.Equal(t, set.Len(), set.ForFile("src/page.tsx").Len())
}
