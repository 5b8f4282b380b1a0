package entities

import (
	"fmt"
)

// MedicineItem is a main medicine proposed by the reasoning step,
// dosed per intake.
type MedicineItem struct {
	Name            string `json:"name"`
	QuantityPerDose int    `json:"quantity_per_dose"`
	Reason          string `json:"reason"`
}

// SupportingMedicineItem is a supporting item proposed by the reasoning step.
// Quantity is a fixed total (e.g. one thermometer); QuantityPerDay is a daily
// amount. Either may be absent.
type SupportingMedicineItem struct {
	Name           string `json:"name"`
	Quantity       *int   `json:"quantity,omitempty"`
	QuantityPerDay *int   `json:"quantity_per_day,omitempty"`
	Reason         string `json:"reason"`
}

// Recommendation is the strongly-typed result of the reasoning collaborator.
type Recommendation struct {
	MainMedicines           []MedicineItem           `json:"main_medicines"`
	SupportingMedicines     []SupportingMedicineItem `json:"supporting_medicines"`
	DosesPerDay             int                      `json:"doses_per_day"`
	TotalDays               int                      `json:"total_days"`
	RecommendationReasoning string                   `json:"recommendation_reasoning"`
	Diagnosis               string                   `json:"diagnosis"`
	SeverityLevel           string                   `json:"severity_level"`
	SideEffectsWarning      string                   `json:"side_effects_warning"`
	MedicalAdvice           string                   `json:"medical_advice"`
	EmergencyStatus         bool                     `json:"emergency_status"`
	ShouldSeeDoctor         bool                     `json:"should_see_doctor"`
	Disclaimer              string                   `json:"disclaimer"`
	AIAvailable             bool                     `json:"ai_available"`
}

// Validate checks the required fields of a parsed recommendation. A payload
// that names medicines must also carry a usable dosing schedule.
func (r *Recommendation) Validate() error {
	if r.RecommendationReasoning == "" {
		return fmt.Errorf("recommendation missing reasoning")
	}
	for _, m := range r.MainMedicines {
		if m.Name == "" {
			return fmt.Errorf("main medicine missing name")
		}
		if m.QuantityPerDose <= 0 {
			return fmt.Errorf("main medicine %q has non-positive quantity_per_dose", m.Name)
		}
	}
	for _, s := range r.SupportingMedicines {
		if s.Name == "" {
			return fmt.Errorf("supporting medicine missing name")
		}
	}
	if len(r.MainMedicines) > 0 {
		if r.DosesPerDay < 1 || r.DosesPerDay > 4 {
			return fmt.Errorf("doses_per_day %d outside 1-4", r.DosesPerDay)
		}
		if r.TotalDays < 1 || r.TotalDays > 5 {
			return fmt.Errorf("total_days %d outside 1-5", r.TotalDays)
		}
	}
	return nil
}

// FallbackRecommendation is the deterministic response used whenever the
// reasoning collaborator is absent or fails: no medicines, no schedule,
// send the patient to a clinician.
func FallbackRecommendation() *Recommendation {
	return &Recommendation{
		MainMedicines:           []MedicineItem{},
		SupportingMedicines:     []SupportingMedicineItem{},
		DosesPerDay:             0,
		TotalDays:               0,
		RecommendationReasoning: "AI analysis is currently unavailable. Please visit a clinic for an in-person consultation.",
		Diagnosis:               "",
		SeverityLevel:           "unknown",
		MedicalAdvice:           "Consult a clinician before taking any medication.",
		ShouldSeeDoctor:         true,
		Disclaimer:              "This system does not replace professional medical advice.",
		AIAvailable:             false,
	}
}
