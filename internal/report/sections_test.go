package report

import "testing"

func TestSectionRegistry(t *testing.T) {
	if len(Sections) != 10 {
		t.Fatalf("expected 10 sections, got %d", len(Sections))
	}
	seen := map[string]Section{}
	total := 0
	for _, s := range Sections {
		fields := FieldsOf(s)
		if len(fields) == 0 {
			t.Errorf("section %s has no fields", s)
		}
		for _, f := range fields {
			if prev, dup := seen[f.Name]; dup {
				t.Errorf("field %s declared in both %s and %s", f.Name, prev, s)
			}
			seen[f.Name] = s
			total++
		}
	}
	if total < 100 {
		t.Errorf("expected at least 100 fields across sections, got %d", total)
	}
}

func TestSectionByName(t *testing.T) {
	if s, ok := SectionByName("dial"); !ok || s != SectionDial {
		t.Errorf("SectionByName(dial) = %v, %v", s, ok)
	}
	if _, ok := SectionByName("unknown"); ok {
		t.Error("unknown section resolved")
	}
}

func TestCollectSection(t *testing.T) {
	form := map[string]string{
		"dial_color":    "black",
		"dial_original": "on",
		"dial_lume":     "false",
		"dial_notes":    "",        // empty: not assessed, dropped
		"case_material": "steel",   // other section: ignored
		"bogus_field":   "ignored", // unknown: ignored
	}
	got := CollectSection(SectionDial, form)
	if len(got) != 3 {
		t.Fatalf("expected 3 collected fields, got %d: %#v", len(got), got)
	}
	if got["dial_color"] != TextValue("black") {
		t.Errorf("dial_color = %#v", got["dial_color"])
	}
	if got["dial_original"] != BoolValue(true) {
		t.Errorf("dial_original = %#v", got["dial_original"])
	}
	if got["dial_lume"] != BoolValue(false) {
		t.Errorf("dial_lume = %#v", got["dial_lume"])
	}
	if _, present := got["case_material"]; present {
		t.Error("a dial save must not carry case fields")
	}
}
