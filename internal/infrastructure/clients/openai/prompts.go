package openai

import (
	"fmt"
	"strings"

	"github.com/medvend/backend/internal/domain/entities"
)

const analysisSystemPrompt = `You are a pharmacist assistant for an automated medicine vending machine. Given a patient profile and a list of available medications, return ONLY valid JSON with this schema:
{
  "main_medicines": [{"name": string, "quantity_per_dose": integer (>= 1), "reason": string}],
  "supporting_medicines": [{"name": string, "quantity": integer or null, "quantity_per_day": integer or null, "reason": string}],
  "doses_per_day": integer (2-4, required when main_medicines is non-empty),
  "total_days": integer (1-5, required when main_medicines is non-empty),
  "recommendation_reasoning": string (required),
  "diagnosis": string,
  "severity_level": "mild" | "moderate" | "severe",
  "side_effects_warning": string,
  "medical_advice": string,
  "emergency_status": boolean,
  "should_see_doctor": boolean,
  "disclaimer": string
}
Rules:
- Recommend ONLY medicines that appear in the provided medication list, with names copied exactly.
- All quantities must be positive integers.
- If the symptoms suggest an emergency or nothing in the list is appropriate, return empty medicine arrays, set emergency_status or should_see_doctor accordingly, and explain in recommendation_reasoning.
- Never invent medications, never exceed 5 total_days, and keep the advice short and non-alarmist.`

func buildAnalysisUserPrompt(profile entities.PatientProfile, medContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient: %s, %d years old, %d cm, %d kg\n", profile.Gender, profile.Age, profile.Height, profile.Weight)
	fmt.Fprintf(&b, "Symptoms: %s\n", profile.Symptoms)
	if len(profile.Allergies) > 0 {
		fmt.Fprintf(&b, "Allergies: %s\n", strings.Join(profile.Allergies, ", "))
	}
	if len(profile.UnderlyingConditions) > 0 {
		fmt.Fprintf(&b, "Underlying conditions: %s\n", strings.Join(profile.UnderlyingConditions, ", "))
	}
	if len(profile.CurrentMedications) > 0 {
		fmt.Fprintf(&b, "Current medications: %s\n", strings.Join(profile.CurrentMedications, ", "))
	}
	b.WriteString("\n")
	b.WriteString(medContext)
	return b.String()
}
