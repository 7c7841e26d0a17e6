package domain

import "strings"

// Depth is the user-selected effort level controlling result budgets.
type Depth string

const (
	// DepthQuick is the default, smaller budget.
	DepthQuick Depth = "quick"

	// DepthDeep widens every budget.
	DepthDeep Depth = "deep"
)

// ParseDepth maps user input to a Depth. Anything other than "deep" is quick.
func ParseDepth(s string) Depth {
	if strings.EqualFold(strings.TrimSpace(s), string(DepthDeep)) {
		return DepthDeep
	}
	return DepthQuick
}

// ResultBudget is the maximum number of flat sources returned in metadata mode.
func (d Depth) ResultBudget() int {
	if d == DepthDeep {
		return 50
	}
	return 20
}

// MaxThemes is the theme cap for the LLM path.
func (d Depth) MaxThemes() int {
	if d == DepthDeep {
		return 4
	}
	return 3
}

// MaxSourcesPerTheme is the per-theme source cap for the LLM path.
func (d Depth) MaxSourcesPerTheme() int {
	if d == DepthDeep {
		return 6
	}
	return 4
}

// Mode selects which response shape a deployment serves.
type Mode string

const (
	// ModeMetadata aggregates bibliographic APIs into a flat source list.
	ModeMetadata Mode = "metadata"

	// ModeLLM asks an LLM with web search for themed PDF sources.
	ModeLLM Mode = "llm"
)

// IsValidMode reports whether m is a supported deployment mode.
func IsValidMode(m Mode) bool {
	return m == ModeMetadata || m == ModeLLM
}
