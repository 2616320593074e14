package ir

import "strings"

// Normalize selects how a qualified symbolic identifier is reduced to the
// flat name the engine expects. The same policy must be applied to every
// identifier in one document; mixing policies is a caller error and is
// not detected here.
type Normalize uint8

const (
	// NormalizePartial strips everything from the first parenthesis
	// onward, dropping per-instance annotations such as time
	// dependence: "sys₊x(t)" -> "sys₊x". Hierarchical prefixes are
	// kept.
	NormalizePartial Normalize = iota

	// NormalizeFull strips everything before and including the last
	// hierarchical separator, then applies the partial rule:
	// "sys₊x(t)" -> "x".
	NormalizeFull
)

// Hierarchical separators recognized in compound identifiers. "₊" is the
// subsystem separator used by the symbolic layer; "." appears in names
// imported from markup models.
var separators = []string{"₊", "."}

// Apply normalizes name under the policy. Absence of a delimiter is a
// no-op; normalization cannot fail.
func (p Normalize) Apply(name string) string {
	if p == NormalizeFull {
		cut := -1
		for _, sep := range separators {
			if i := strings.LastIndex(name, sep); i >= 0 && i+len(sep) > cut {
				cut = i + len(sep)
			}
		}
		if cut >= 0 {
			name = name[cut:]
		}
	}
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	return name
}

func (p Normalize) String() string {
	if p == NormalizeFull {
		return "full"
	}
	return "partial"
}
