package report

import "testing"

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		raw  string
		want Value
	}{
		{"checkbox on", KindBool, "on", BoolValue(true)},
		{"literal true", KindBool, "true", BoolValue(true)},
		{"literal false", KindBool, "false", BoolValue(false)},
		{"bool garbage kept as text", KindBool, "maybe", TextValue("maybe")},
		{"number", KindNumber, "42.5", NumberValue(42.5)},
		{"number garbage kept as text", KindNumber, "n/a", TextValue("n/a")},
		{"text", KindText, "steel", TextValue("steel")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coerce(tt.kind, tt.raw); got != tt.want {
				t.Errorf("Coerce(%s, %q) = %#v, want %#v", tt.kind, tt.raw, got, tt.want)
			}
		})
	}
}

func TestDisplay(t *testing.T) {
	if got := BoolValue(true).Display(); got != "true" {
		t.Errorf("true displays as %q", got)
	}
	if got := BoolValue(false).Display(); got != "false" {
		t.Errorf("false displays as %q", got)
	}
	if got := NumberValue(7.5).Display(); got != "7.5" {
		t.Errorf("7.5 displays as %q", got)
	}
	if got := NumberValue(8).Display(); got != "8" {
		t.Errorf("8 displays as %q", got)
	}
	if got := TextValue("blue").Display(); got != "blue" {
		t.Errorf("text displays as %q", got)
	}
}

// A boolean saved as true, reloaded as "true", re-submitted as checkbox
// "on", must persist as boolean true again.
func TestBooleanRoundTrip(t *testing.T) {
	saved := Coerce(KindBool, "on")
	if saved != BoolValue(true) {
		t.Fatalf("initial save: %#v", saved)
	}
	display := saved.Display()
	if display != "true" {
		t.Fatalf("reload display: %q", display)
	}
	// The form re-submits the checked box as "on" again.
	resaved := Coerce(KindBool, "on")
	if resaved != BoolValue(true) {
		t.Fatalf("re-save: %#v", resaved)
	}
	// And a form that round-trips the literal also decodes cleanly.
	if Coerce(KindBool, display) != BoolValue(true) {
		t.Fatalf("literal round-trip failed")
	}
}

func TestFieldMapMerge(t *testing.T) {
	m := FieldMap{
		"case_material": TextValue("steel"),
		"case_polished": BoolValue(false),
	}
	m = m.Merge(FieldMap{
		"dial_color":    TextValue("black"),
		"case_polished": BoolValue(true),
	})
	if m["case_material"] != TextValue("steel") {
		t.Errorf("untouched field changed: %#v", m["case_material"])
	}
	if m["case_polished"] != BoolValue(true) {
		t.Errorf("overwritten field not updated: %#v", m["case_polished"])
	}
	if m["dial_color"] != TextValue("black") {
		t.Errorf("new field missing: %#v", m["dial_color"])
	}
}

func TestFieldMapMergeNilReceiver(t *testing.T) {
	var m FieldMap
	m = m.Merge(FieldMap{"dial_color": TextValue("silver")})
	if m["dial_color"] != TextValue("silver") {
		t.Fatalf("merge into nil map: %#v", m)
	}
}
