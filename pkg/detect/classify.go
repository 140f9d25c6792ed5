package detect

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// UnknownLabel marks a field whose label could not be inferred. The field
// is still counted but never used as a human-facing prompt.
const UnknownLabel = "Unknown"

// preferredDataAttrs are tried in order before any other data attribute
// when synthesizing a selector. Automation and test ids are deliberately
// stable across page reflows.
var preferredDataAttrs = []string{
	"data-automation-id",
	"data-testid",
	"data-field",
	"data-qa",
}

var cookieKeywords = []string{
	"cookie", "consent", "gdpr", "tracking", "analytics",
	"performance", "functional", "targeting", "advertising",
	"onetrust", "cookiebot", "privacy-policy", "cookie-policy",
}

// noiseLabels are generic boilerplate that carries no question semantics.
// A field with one of these labels is dropped unless it has a meaningful
// name attribute.
var noiseLabels = map[string]bool{
	"checkbox label":     true,
	"button":             true,
	"submit":             true,
	"cookie list search": true,
}

// BuildFields runs the pure detection pipeline over harvested elements from
// one frame. Output preserves input order, which is DOM encounter order.
func BuildFields(raws []RawElement, frameURL string) []*FormField {
	var fields []*FormField
	for _, raw := range raws {
		if raw.Hidden || raw.CookieAncestor {
			continue
		}
		if isCookieText(strings.ToLower(raw.Name + " " + raw.ID + " " + raw.Placeholder)) {
			continue
		}

		fieldType := ClassifyType(raw.Tag, raw.Type)
		if raw.Type == "hidden" {
			continue
		}

		selector := Synthesize(raw)
		if selector == "" {
			continue
		}

		label := InferLabel(raw)
		if isNoiseLabel(label, raw.Name, raw.ID) {
			continue
		}

		fields = append(fields, &FormField{
			Type:     fieldType,
			Label:    label,
			Selector: selector,
			Name:     raw.Name,
			Required: raw.Required,
			FrameURL: frameURL,
		})
	}
	return fields
}

// ClassifyType maps tag plus type attribute to the field-type enum.
func ClassifyType(tag, inputType string) FieldType {
	switch strings.ToLower(tag) {
	case "select":
		return FieldSelect
	case "textarea":
		return FieldTextarea
	case "input":
		switch strings.ToLower(inputType) {
		case "email":
			return FieldEmail
		case "tel":
			return FieldPhone
		case "url":
			return FieldURL
		case "file":
			return FieldFile
		case "checkbox":
			return FieldCheckbox
		case "radio":
			return FieldRadio
		default:
			return FieldText
		}
	}
	// Attributed divs acting as controls (role=combobox and friends).
	return FieldUnknown
}

// Synthesize derives the most stable selector available, trying strategies
// in fixed priority and stopping at the first hit. Returns "" only when the
// element has nothing usable at all, in which case it is dropped.
func Synthesize(raw RawElement) string {
	if raw.ID != "" {
		return "#" + raw.ID
	}
	if raw.Name != "" {
		return fmt.Sprintf(`[name="%s"]`, escapeQuotes(raw.Name))
	}

	for _, attr := range preferredDataAttrs {
		if v, ok := raw.DataAttrs[attr]; ok && v != "" {
			return fmt.Sprintf(`[%s="%s"]`, attr, escapeQuotes(v))
		}
	}
	if attr, v := firstDataAttr(raw.DataAttrs); attr != "" {
		return fmt.Sprintf(`[%s="%s"]`, attr, escapeQuotes(v))
	}

	if raw.AriaLabel != "" {
		return fmt.Sprintf(`[aria-label="%s"]`, escapeQuotes(raw.AriaLabel))
	}
	if raw.Placeholder != "" {
		return fmt.Sprintf(`[placeholder="%s"]`, escapeQuotes(raw.Placeholder))
	}
	if raw.Autocomplete != "" && raw.Autocomplete != "off" && raw.Autocomplete != "on" {
		return fmt.Sprintf(`%s[autocomplete="%s"]`, raw.Tag, escapeQuotes(raw.Autocomplete))
	}

	// Structural path is last: it breaks when unrelated siblings change,
	// but it guarantees attribute-less fields still get a selector.
	return raw.StructuralPath
}

// firstDataAttr returns a deterministic non-preferred data attribute, if
// any. Lexicographically smallest key wins so repeated passes agree.
func firstDataAttr(attrs map[string]string) (string, string) {
	best := ""
	for k, v := range attrs {
		if v == "" {
			continue
		}
		if best == "" || k < best {
			best = k
		}
	}
	if best == "" {
		return "", ""
	}
	return best, attrs[best]
}

// InferLabel derives the best human-readable name for a field.
func InferLabel(raw RawElement) string {
	if raw.AriaLabel != "" {
		return strings.TrimSpace(raw.AriaLabel)
	}
	for _, attr := range preferredDataAttrs {
		if v := raw.DataAttrs[attr]; v != "" {
			return humanize(v)
		}
	}
	if raw.LabelText != "" {
		return raw.LabelText
	}
	if raw.Placeholder != "" {
		return raw.Placeholder
	}
	if raw.Name != "" {
		return humanize(raw.Name)
	}
	if raw.ID != "" {
		if label := humanizeID(raw.ID); label != "" {
			return label
		}
	}
	return UnknownLabel
}

var (
	camelRe       = regexp.MustCompile(`([a-z])([A-Z])`)
	indexSuffixRe = regexp.MustCompile(`\d+$`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// humanize turns snake_case, kebab-case, or camelCase identifiers into
// title-cased words.
func humanize(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	s = camelRe.ReplaceAllString(s, "$1 $2")
	s = spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")

	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// humanizeID is humanize plus stripping of trailing array indexes, which
// ids like "school--0" carry. Returns "" when nothing meaningful remains.
func humanizeID(id string) string {
	clean := strings.NewReplacer("--", " ", "-", " ", "_", " ").Replace(id)
	clean = strings.TrimSpace(indexSuffixRe.ReplaceAllString(clean, ""))
	if len(clean) <= 2 {
		return ""
	}
	return humanize(clean)
}

func isCookieText(text string) bool {
	for _, kw := range cookieKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// isNoiseLabel drops boilerplate labels, but keeps the field when a
// meaningful name attribute suggests real form data behind a bad label.
func isNoiseLabel(label, name, id string) bool {
	labelLower := strings.TrimSpace(strings.ToLower(label))
	nameLower := strings.ToLower(name)
	idLower := strings.ToLower(id)

	if noiseLabels[labelLower] {
		if nameLower != "" && !isCookieText(nameLower) {
			return false
		}
		return true
	}

	for _, kw := range []string{"cookie", "consent", "gdpr", "onetrust", "cookiebot"} {
		if strings.Contains(labelLower, kw) || strings.Contains(nameLower, kw) || strings.Contains(idLower, kw) {
			return true
		}
	}
	return false
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
