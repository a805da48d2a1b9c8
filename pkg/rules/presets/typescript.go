package presets

import (
	"regexp"

	"github.com/walteh/rewriterc/pkg/rules"
)

// apiContractTypes maps hand-written request/input types to the schema
// derived types that replace them. Longer names come first where one name is
// a prefix of another (CreateMaintenanceRequestInput before
// CreateMaintenanceRequest); the patterns are word-bounded as well.
var apiContractTypes = [][2]string{
	{"CreateLeaseInput", "LeaseCreate"},
	{"UpdateLeaseInput", "LeaseUpdate"},

	{"CreatePropertyInput", "PropertyCreate"},
	{"UpdatePropertyInput", "PropertyUpdate"},
	{"CreatePropertyRequest", "PropertyCreate"},
	{"UpdatePropertyRequest", "PropertyUpdate"},

	{"CreateUnitInput", "UnitInput"},
	{"UpdateUnitInput", "UnitUpdate"},
	{"CreateUnitRequest", "UnitInput"},
	{"UpdateUnitRequest", "UnitUpdate"},

	{"CreateMaintenanceRequestInput", "MaintenanceRequestCreate"},
	{"UpdateMaintenanceRequestInput", "MaintenanceRequestUpdate"},
	{"CreateMaintenanceRequest", "MaintenanceRequestCreate"},
	{"UpdateMaintenanceRequest", "MaintenanceRequestUpdate"},
}

func init() {
	specs := make([]rules.Spec, 0, len(apiContractTypes))
	for _, t := range apiContractTypes {
		specs = append(specs, rules.Spec{
			ID:          "type-" + t[0],
			Pattern:     `\b` + regexp.QuoteMeta(t[0]) + `\b`,
			Replacement: t[1],
		})
	}

	register(Preset{
		Name:        "api-contract-types",
		Description: "replace manual API contract types with schema types",
		Extensions:  []string{".ts", ".tsx"},
		Exclude:     []string{"**/api-contracts.ts"},
		Rules:       specs,
	})

	register(Preset{
		Name:        "dedupe-logger-import",
		Description: "keep only the first logger import of each file",
		Extensions:  []string{".ts", ".tsx"},
		Rules: []rules.Spec{
			{
				ID:      "logger-import",
				Kind:    rules.KindDedupeLine.String(),
				Pattern: "import { logger } from '@/lib/logger'",
				Literal: true,
			},
		},
	})

	register(Preset{
		Name:        "orphaned-error-props",
		Description: "drop property lines orphaned after a one-line handleErrorEnhanced(...) call",
		Extensions:  []string{".ts"},
		Rules: []rules.Spec{
			{
				ID:         "orphaned-error-props",
				Kind:       rules.KindOrphanBlock.String(),
				Pattern:    `handleErrorEnhanced\(.*\)\s*$`,
				Body:       `^\s*[^/*\s].*:.*(,|\}\)?)\s*$`,
				Terminator: `\}\)\s*$`,
			},
		},
	})
}
