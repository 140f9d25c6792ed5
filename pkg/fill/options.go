package fill

import "strings"

// Option is one dropdown entry, value attribute plus visible text.
type Option struct {
	Value string
	Text  string
}

// ChooseOption picks the option a resolved value refers to. Exact matches
// on value or text come first; failing that, the first case-insensitive
// substring hit on either wins. A miss returns false: the control is never
// moved to an option the value did not actually name.
func ChooseOption(value string, options []Option) (Option, bool) {
	for _, opt := range options {
		if opt.Value == value || opt.Text == value {
			return opt, true
		}
	}

	needle := strings.ToLower(value)
	if needle == "" {
		return Option{}, false
	}
	for _, opt := range options {
		if strings.Contains(strings.ToLower(opt.Text), needle) ||
			strings.Contains(strings.ToLower(opt.Value), needle) {
			return opt, true
		}
	}
	return Option{}, false
}

// DropdownSignals reports whether a text-like control is actually a
// scripted dropdown. A plain value-set on these widgets is silently ignored
// by the page's own JavaScript, so they need the type-ahead protocol.
func DropdownSignals(placeholder, role, class string) bool {
	p := strings.ToLower(placeholder)
	if strings.Contains(p, "select") || strings.Contains(p, "choose") {
		return true
	}
	if strings.EqualFold(role, "combobox") {
		return true
	}
	c := strings.ToLower(class)
	return strings.Contains(c, "select") || strings.Contains(c, "dropdown")
}
