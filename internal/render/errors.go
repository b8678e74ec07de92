package render

import "strings"

// UnsupportedFeatureError reports a construct that a render target or an
// executor backend cannot express.
type UnsupportedFeatureError struct {
	Target  string
	Feature string
	Hint    string
}

func (e UnsupportedFeatureError) Error() string {
	var b strings.Builder
	b.WriteString(e.Target + ": " + e.Feature + " is not supported")
	if e.Hint != "" {
		b.WriteString(" (" + e.Hint + ")")
	}
	return b.String()
}

// NewUnsupportedFeatureError returns an UnsupportedFeatureError for target.
// Only the first hint is kept.
func NewUnsupportedFeatureError(target, feature string, hint ...string) error {
	e := UnsupportedFeatureError{Target: target, Feature: feature}
	if len(hint) > 0 {
		e.Hint = hint[0]
	}
	return e
}
