package report

// Section is one of the ten groupings of the certification report.
// Sections are presentational units: each saves independently and no
// validation crosses section boundaries.
type Section string

const (
	SectionGeneral      Section = "general"
	SectionAccessories  Section = "accessories"
	SectionCase         Section = "case"
	SectionBracelet     Section = "bracelet"
	SectionDial         Section = "dial"
	SectionMovement     Section = "movement"
	SectionTechnical    Section = "technical"
	SectionIntervention Section = "intervention"
	SectionMarket       Section = "market"
	SectionScore        Section = "score"
)

// Sections lists all sections in report (and PDF) order.
var Sections = []Section{
	SectionGeneral,
	SectionAccessories,
	SectionCase,
	SectionBracelet,
	SectionDial,
	SectionMovement,
	SectionTechnical,
	SectionIntervention,
	SectionMarket,
	SectionScore,
}

// Field declares a named report field and its value kind.
type Field struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Field names used outside the registry (score rollup, PDF export).
const (
	FieldBrand          = "general_brand"
	FieldModel          = "general_model"
	FieldScoreCase      = "score_case"
	FieldScoreDial      = "score_dial"
	FieldScoreStrap     = "score_strap"
	FieldScoreMovement  = "score_movement"
	FieldScoreTechnical = "score_technical"
	FieldScoreFinal     = "score_final"
	FieldMarketValue    = "market_value"
	FieldMarketEstimate = "market_estimated_value"
	FieldCommentCond    = "score_comment_condition"
	FieldCommentGeneral = "score_comment_general"
	FieldCommentFinal   = "score_comment_final"
)

// ScoreFields are the category sub-scores feeding the rollup, in
// display order with their labels.
var ScoreFields = []struct {
	Name  string
	Label string
}{
	{FieldScoreCase, "Boîtier"},
	{FieldScoreDial, "Cadran"},
	{FieldScoreStrap, "Bracelet"},
	{FieldScoreMovement, "Mouvement"},
	{FieldScoreTechnical, "Technique"},
}

var sectionFields = map[Section][]Field{
	SectionGeneral: {
		{FieldBrand, KindText},
		{FieldModel, KindText},
		{"general_reference", KindText},
		{"general_serial", KindText},
		{"general_year", KindText},
		{"general_gender", KindText},
		{"general_diameter_mm", KindNumber},
		{"general_movement_type", KindText},
		{"general_limited_edition", KindBool},
		{"general_country_origin", KindText},
		{"general_notes", KindText},
	},
	SectionAccessories: {
		{"accessories_box", KindBool},
		{"accessories_papers", KindBool},
		{"accessories_warranty_card", KindBool},
		{"accessories_spare_links", KindBool},
		{"accessories_travel_case", KindBool},
		{"accessories_manual", KindBool},
		{"accessories_purchase_invoice", KindBool},
		{"accessories_service_records", KindBool},
		{"accessories_tags", KindBool},
		{"accessories_notes", KindText},
	},
	SectionCase: {
		{"case_material", KindText},
		{"case_condition", KindText},
		{"case_polished", KindBool},
		{"case_scratches", KindText},
		{"case_dents", KindBool},
		{"case_back_type", KindText},
		{"case_back_condition", KindText},
		{"case_crown_original", KindBool},
		{"case_crown_condition", KindText},
		{"case_bezel_condition", KindText},
		{"case_lugs_condition", KindText},
		{"case_notes", KindText},
	},
	SectionBracelet: {
		{"bracelet_type", KindText},
		{"bracelet_material", KindText},
		{"bracelet_condition", KindText},
		{"bracelet_original", KindBool},
		{"bracelet_clasp_type", KindText},
		{"bracelet_clasp_condition", KindText},
		{"bracelet_length_mm", KindNumber},
		{"bracelet_links_count", KindNumber},
		{"bracelet_stretch", KindBool},
		{"bracelet_notes", KindText},
	},
	SectionDial: {
		{"dial_color", KindText},
		{"dial_condition", KindText},
		{"dial_original", KindBool},
		{"dial_repainted", KindBool},
		{"dial_indexes_type", KindText},
		{"dial_indexes_condition", KindText},
		{"dial_hands_original", KindBool},
		{"dial_hands_condition", KindText},
		{"dial_lume", KindBool},
		{"dial_lume_condition", KindText},
		{"dial_date_display", KindBool},
		{"dial_notes", KindText},
	},
	SectionMovement: {
		{"movement_caliber", KindText},
		{"movement_type", KindText},
		{"movement_condition", KindText},
		{"movement_original", KindBool},
		{"movement_serial", KindText},
		{"movement_jewels_count", KindNumber},
		{"movement_rotor_condition", KindText},
		{"movement_service_needed", KindBool},
		{"movement_runs", KindBool},
		{"movement_notes", KindText},
	},
	SectionTechnical: {
		{"technical_amplitude_deg", KindNumber},
		{"technical_rate_s_day", KindNumber},
		{"technical_beat_error_ms", KindNumber},
		{"technical_power_reserve_h", KindNumber},
		{"technical_water_resistance_m", KindNumber},
		{"technical_water_test_passed", KindBool},
		{"technical_pressure_test", KindBool},
		{"technical_timegrapher_ok", KindBool},
		{"technical_notes", KindText},
	},
	SectionIntervention: {
		{"intervention_performed", KindBool},
		{"intervention_description", KindText},
		{"intervention_last_service_date", KindText},
		{"intervention_service_by", KindText},
		{"intervention_parts_replaced", KindText},
		{"intervention_parts_original", KindBool},
		{"intervention_cleaning", KindBool},
		{"intervention_regulation", KindBool},
		{"intervention_notes", KindText},
	},
	SectionMarket: {
		{FieldMarketValue, KindNumber},
		{FieldMarketEstimate, KindNumber},
		{"market_currency", KindText},
		{"market_trend", KindText},
		{"market_rarity", KindText},
		{"market_demand", KindText},
		{"market_comparable_sales", KindText},
		{"market_notes", KindText},
	},
	SectionScore: {
		{FieldScoreCase, KindNumber},
		{FieldScoreDial, KindNumber},
		{FieldScoreStrap, KindNumber},
		{FieldScoreMovement, KindNumber},
		{FieldScoreTechnical, KindNumber},
		{FieldScoreFinal, KindNumber},
		{FieldCommentCond, KindText},
		{FieldCommentGeneral, KindText},
		{FieldCommentFinal, KindText},
	},
}

// SectionByName resolves a section from its URL name.
func SectionByName(name string) (Section, bool) {
	s := Section(name)
	_, ok := sectionFields[s]
	return s, ok
}

// FieldsOf returns the declared fields of a section.
func FieldsOf(s Section) []Field {
	return sectionFields[s]
}

// CollectSection reads the raw form values belonging to one section and
// coerces them into typed values. Empty strings and fields of other
// sections are dropped: a save call carries only what the active section
// submitted, so merging it cannot null out other sections.
func CollectSection(s Section, form map[string]string) FieldMap {
	out := make(FieldMap)
	for _, f := range sectionFields[s] {
		raw, ok := form[f.Name]
		if !ok || raw == "" {
			continue
		}
		out[f.Name] = Coerce(f.Kind, raw)
	}
	return out
}
