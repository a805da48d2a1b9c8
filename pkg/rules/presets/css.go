package presets

import "github.com/walteh/rewriterc/pkg/rules"

// cssVariableRenames maps pre-v4 CSS custom properties to their TailwindCSS
// v4 namespaced names. Order matters only for readability: every pattern
// includes the closing parenthesis, so no entry is a prefix of another.
var cssVariableRenames = [][2]string{
	// colours gain the --color- namespace
	{"border", "color-border"},
	{"background", "color-background"},
	{"foreground", "color-foreground"},
	{"muted", "color-muted"},
	{"muted-foreground", "color-muted-foreground"},
	{"primary", "color-primary"},
	{"primary-foreground", "color-primary-foreground"},
	{"secondary", "color-secondary"},
	{"secondary-foreground", "color-secondary-foreground"},
	{"accent", "color-accent"},
	{"accent-foreground", "color-accent-foreground"},
	{"destructive", "color-destructive"},
	{"destructive-foreground", "color-destructive-foreground"},
	{"card", "color-card"},
	{"card-foreground", "color-card-foreground"},
	{"popover", "color-popover"},
	{"popover-foreground", "color-popover-foreground"},
	{"ring", "color-ring"},
	{"input", "color-input"},
	{"success", "color-success"},
	{"success-foreground", "color-success-foreground"},
	{"warning", "color-warning"},
	{"warning-foreground", "color-warning-foreground"},
	{"info", "color-info"},
	{"info-foreground", "color-info-foreground"},
	{"sidebar", "color-sidebar"},
	{"sidebar-foreground", "color-sidebar-foreground"},

	// --line-height-* -> --leading-*
	{"line-height-display-2xl", "leading-display-2xl"},
	{"line-height-display-xl", "leading-display-xl"},
	{"line-height-display-lg", "leading-display-lg"},
	{"line-height-display-md", "leading-display-md"},
	{"line-height-display-sm", "leading-display-sm"},
	{"line-height-large-title", "leading-large-title"},
	{"line-height-title-1", "leading-title-1"},
	{"line-height-title-2", "leading-title-2"},
	{"line-height-title-3", "leading-title-3"},
	{"line-height-headline", "leading-headline"},
	{"line-height-body", "leading-body"},
	{"line-height-callout", "leading-callout"},
	{"line-height-subheadline", "leading-subheadline"},
	{"line-height-footnote", "leading-footnote"},
	{"line-height-caption", "leading-caption"},
	{"line-height-none", "leading-none"},
	{"line-height-tight", "leading-tight"},
	{"line-height-snug", "leading-snug"},
	{"line-height-normal", "leading-normal"},
	{"line-height-relaxed", "leading-relaxed"},
	{"line-height-loose", "leading-loose"},

	// radius
	{"radius-small", "radius-sm"},
	{"radius-medium", "radius-md"},
	{"radius-large", "radius-lg"},
	{"radius-xlarge", "radius-xl"},
	{"radius-xxlarge", "radius-2xl"},

	// shadow
	{"shadow-small", "shadow-sm"},
	{"shadow-medium", "shadow-md"},
	{"shadow-large", "shadow-lg"},

	// --font-* sizes -> --text-*
	{"font-display-2xl", "text-display-2xl"},
	{"font-display-xl", "text-display-xl"},
	{"font-display-lg", "text-display-lg"},
	{"font-display-md", "text-display-md"},
	{"font-display-sm", "text-display-sm"},
	{"font-large-title", "text-large-title"},
	{"font-title-1", "text-title-1"},
	{"font-title-2", "text-title-2"},
	{"font-title-3", "text-title-3"},
	{"font-headline", "text-headline"},
	{"font-body", "text-body"},
	{"font-callout", "text-callout"},
	{"font-subheadline", "text-subheadline"},
	{"font-footnote", "text-footnote"},
	{"font-caption-1", "text-caption-1"},
	{"font-caption-2", "text-caption-2"},
}

func init() {
	specs := make([]rules.Spec, 0, len(cssVariableRenames))
	for _, r := range cssVariableRenames {
		specs = append(specs, rules.Spec{
			ID:          "css-" + r[0],
			Pattern:     "var(--" + r[0] + ")",
			Replacement: "var(--" + r[1] + ")",
			Literal:     true,
		})
	}

	register(Preset{
		Name:        "css-variables-v4",
		Description: "rename CSS custom properties to the TailwindCSS v4 namespaces",
		Extensions:  []string{".ts", ".tsx", ".css"},
		Rules:       specs,
	})
}
