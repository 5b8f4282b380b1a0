package entities

// Medication represents a catalog medication as dispensed by the vending machine.
type Medication struct {
	ID                int64    `json:"id" db:"id"`
	Name              string   `json:"name" db:"name"`
	ActiveIngredient  string   `json:"active_ingredient" db:"active_ingredient"`
	Form              string   `json:"form" db:"form"`
	UnitType          string   `json:"unit_type" db:"unit_type"`
	UnitPrice         int64    `json:"unit_price" db:"unit_price"` // integer currency per unit
	Stock             int      `json:"stock" db:"stock"`
	SideEffects       string   `json:"side_effects" db:"side_effects"`
	MaxPerDay         int      `json:"max_per_day" db:"max_per_day"`
	IsSupporting      bool     `json:"is_supporting" db:"is_supporting"`
	TreatmentClass    string   `json:"treatment_class" db:"treatment_class"`
	Contraindications string   `json:"contraindications" db:"contraindications"`
	AllergyTags       []string `json:"allergy_tags" db:"allergy_tags"`
}

// Symptom represents a named symptom from the catalog
type Symptom struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// PatientProfile carries the patient information attached to an analysis or
// a confirmed prescription. It is not validated by the core; the boundary that
// collects it is responsible for that.
type PatientProfile struct {
	Gender               string   `json:"gender"`
	Age                  int      `json:"age"`
	Height               int      `json:"height"` // cm
	Weight               int      `json:"weight"` // kg
	Symptoms             string   `json:"symptoms"`
	Allergies            []string `json:"allergies"`
	UnderlyingConditions []string `json:"underlying_conditions"`
	CurrentMedications   []string `json:"current_medications"`
}
