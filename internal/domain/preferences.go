package domain

import "strings"

// PreferenceAny is the sentinel meaning "no constraint" for a preference
// dimension. A field containing it contributes nothing to the prompt.
const PreferenceAny = "any"

// PreferenceSet holds a user's layered music preferences.
type PreferenceSet struct {
	Style            []string  `json:"style"`
	Language         []string  `json:"language"`
	Source           []string  `json:"source"`
	DefaultAlignment Alignment `json:"defaultAlignment"`
}

// DefaultPreferences returns the unconstrained preference set.
func DefaultPreferences() PreferenceSet {
	return PreferenceSet{
		Style:            []string{PreferenceAny},
		Language:         []string{PreferenceAny},
		Source:           []string{PreferenceAny},
		DefaultAlignment: AlignmentMatch,
	}
}

// ActiveStyles returns the style constraints, nil when unconstrained.
func (p PreferenceSet) ActiveStyles() []string { return activeValues(p.Style) }

// ActiveLanguages returns the language constraints, nil when unconstrained.
func (p PreferenceSet) ActiveLanguages() []string { return activeValues(p.Language) }

// ActiveSources returns the source constraints, nil when unconstrained.
func (p PreferenceSet) ActiveSources() []string { return activeValues(p.Source) }

// activeValues drops empties and treats a field containing the "any" sentinel
// as fully unconstrained.
func activeValues(values []string) []string {
	active := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if strings.EqualFold(trimmed, PreferenceAny) {
			return nil
		}
		active = append(active, trimmed)
	}
	if len(active) == 0 {
		return nil
	}
	return active
}
