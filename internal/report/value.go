// Package report defines the certification report field registry and the
// typed values stored per field. A report is a wide, flat record keyed by
// field name; every field is optional and its absence means "not assessed",
// which is not the same as a false boolean or a zero number.
package report

import "strconv"

// Kind discriminates the value variant of a report field.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
)

// Value is a tagged variant over {text, number, boolean}. It is decoded
// once at the persistence boundary; consumers read the typed accessors
// instead of re-parsing strings.
type Value struct {
	Kind   Kind    `json:"kind"`
	Text   string  `json:"text,omitempty"`
	Number float64 `json:"number,omitempty"`
	Bool   bool    `json:"bool,omitempty"`
}

// TextValue wraps a string.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// NumberValue wraps a float.
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Coerce decodes a raw form string into a Value according to the field's
// declared kind. Checkbox submissions arrive as "on" or "true"; a reloaded
// boolean arrives as the literal "true"/"false". Anything that does not
// decode for its declared kind is kept as text rather than dropped.
func Coerce(kind Kind, raw string) Value {
	switch kind {
	case KindBool:
		switch raw {
		case "on", "true":
			return BoolValue(true)
		case "false":
			return BoolValue(false)
		}
		return TextValue(raw)
	case KindNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return NumberValue(f)
		}
		return TextValue(raw)
	}
	return TextValue(raw)
}

// Display stringifies a value for form pre-fill. Booleans become the
// literals "true"/"false"; numbers drop trailing zeros.
func (v Value) Display() string {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// FieldMap is the flat report record: field name -> typed value.
type FieldMap map[string]Value

// Merge applies the other map on top of the receiver without touching
// fields the other map does not carry. Returns the receiver for chaining;
// a nil receiver yields a fresh map.
func (m FieldMap) Merge(other FieldMap) FieldMap {
	if m == nil {
		m = make(FieldMap, len(other))
	}
	for name, v := range other {
		m[name] = v
	}
	return m
}

// Display stringifies every present field for form hydration.
func (m FieldMap) Display() map[string]string {
	out := make(map[string]string, len(m))
	for name, v := range m {
		out[name] = v.Display()
	}
	return out
}

// Number returns the numeric value of a field and whether the field is
// present with a numeric kind.
func (m FieldMap) Number(name string) (float64, bool) {
	v, ok := m[name]
	if !ok || v.Kind != KindNumber {
		return 0, false
	}
	return v.Number, true
}

// Text returns the text value of a field, empty when absent or non-text.
func (m FieldMap) Text(name string) string {
	v, ok := m[name]
	if !ok || v.Kind != KindText {
		return ""
	}
	return v.Text
}
