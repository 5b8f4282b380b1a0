package main

import (
	"context"
	"log"
	"os"

	"github.com/medvend/backend/internal/adapters/database"
	"github.com/medvend/backend/internal/domain/entities"
	"github.com/medvend/backend/internal/infrastructure/clients/postgres"
	"github.com/medvend/backend/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS medications (
	id                 BIGSERIAL PRIMARY KEY,
	name               TEXT NOT NULL UNIQUE,
	active_ingredient  TEXT,
	form               TEXT,
	unit_type          TEXT,
	unit_price         BIGINT NOT NULL DEFAULT 0,
	stock              INTEGER NOT NULL DEFAULT 0,
	side_effects       TEXT,
	max_per_day        INTEGER NOT NULL DEFAULT 0,
	is_supporting      BOOLEAN NOT NULL DEFAULT FALSE,
	treatment_class    TEXT,
	contraindications  TEXT,
	allergy_tags       TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS symptoms (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS prescriptions (
	id              TEXT PRIMARY KEY,
	patient_profile JSONB,
	doses_per_day   INTEGER NOT NULL DEFAULT 0,
	total_days      INTEGER NOT NULL DEFAULT 0,
	total_price     BIGINT NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS prescription_items (
	prescription_id TEXT NOT NULL REFERENCES prescriptions(id),
	medication_id   BIGINT NOT NULL REFERENCES medications(id),
	name            TEXT NOT NULL,
	total_quantity  INTEGER NOT NULL,
	unit_price      BIGINT NOT NULL,
	line_price      BIGINT NOT NULL,
	position        INTEGER NOT NULL,
	PRIMARY KEY (prescription_id, position)
);
`

func sampleMedications() []*entities.Medication {
	return []*entities.Medication{
		{Name: "Paracetamol", ActiveIngredient: "paracetamol 500mg", Form: "tablet", UnitType: "tablet", UnitPrice: 1000, Stock: 100, SideEffects: "rare at normal doses", MaxPerDay: 8, TreatmentClass: "fever, headache, mild pain", Contraindications: "severe liver disease"},
		{Name: "Ibuprofen", ActiveIngredient: "ibuprofen 200mg", Form: "tablet", UnitType: "tablet", UnitPrice: 1500, Stock: 80, SideEffects: "stomach upset", MaxPerDay: 6, TreatmentClass: "pain, inflammation, fever", Contraindications: "stomach ulcer, kidney disease", AllergyTags: []string{"nsaid"}},
		{Name: "Loratadine", ActiveIngredient: "loratadine 10mg", Form: "tablet", UnitType: "tablet", UnitPrice: 2000, Stock: 60, SideEffects: "drowsiness, dry mouth", MaxPerDay: 1, TreatmentClass: "allergy, runny nose, hives", AllergyTags: []string{"antihistamine"}},
		{Name: "Cetirizine", ActiveIngredient: "cetirizine 10mg", Form: "tablet", UnitType: "tablet", UnitPrice: 1800, Stock: 45, SideEffects: "drowsiness", MaxPerDay: 1, TreatmentClass: "allergy, itching", AllergyTags: []string{"antihistamine"}},
		{Name: "Dextromethorphan", ActiveIngredient: "dextromethorphan 15mg", Form: "syrup", UnitType: "bottle", UnitPrice: 25000, Stock: 30, SideEffects: "dizziness", MaxPerDay: 4, TreatmentClass: "dry cough"},
		{Name: "Oresol", ActiveIngredient: "oral rehydration salts", Form: "powder", UnitType: "sachet", UnitPrice: 3000, Stock: 120, MaxPerDay: 6, IsSupporting: true, TreatmentClass: "dehydration, diarrhea"},
		{Name: "Vitamin C", ActiveIngredient: "ascorbic acid 500mg", Form: "tablet", UnitType: "tablet", UnitPrice: 500, Stock: 200, MaxPerDay: 2, IsSupporting: true, TreatmentClass: "immune support"},
		{Name: "Thermometer", Form: "device", UnitType: "unit", UnitPrice: 45000, Stock: 10, IsSupporting: true, TreatmentClass: "temperature monitoring"},
		{Name: "Smecta", ActiveIngredient: "diosmectite 3g", Form: "powder", UnitType: "sachet", UnitPrice: 4500, Stock: 70, MaxPerDay: 3, TreatmentClass: "diarrhea, stomach upset"},
		{Name: "Strepsils", ActiveIngredient: "amylmetacresol", Form: "lozenge", UnitType: "lozenge", UnitPrice: 1200, Stock: 90, MaxPerDay: 8, TreatmentClass: "sore throat"},
	}
}

func sampleSymptoms() []*entities.Symptom {
	names := []string{
		"fever", "headache", "sore throat", "dry cough", "productive cough",
		"runny nose", "sneezing", "itchy eyes", "hives", "diarrhea",
		"nausea", "stomach ache", "muscle pain", "fatigue", "chills",
	}
	symptoms := make([]*entities.Symptom, len(names))
	for i, name := range names {
		symptoms[i] = &entities.Symptom{Name: name}
	}
	return symptoms
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				prescription_items,
				prescriptions,
				medications,
				symptoms
			RESTART IDENTITY CASCADE
		`); err != nil {
			log.Fatalf("Failed to truncate tables: %v", err)
		}
	}

	catalog := database.NewMedicationAdapter(pgClient)

	for _, medication := range sampleMedications() {
		if err := catalog.CreateMedication(ctx, medication); err != nil {
			log.Printf("Skipping medication %q: %v", medication.Name, err)
			continue
		}
		log.Printf("Seeded medication %q", medication.Name)
	}

	for _, symptom := range sampleSymptoms() {
		if err := catalog.CreateSymptom(ctx, symptom); err != nil {
			log.Printf("Skipping symptom %q: %v", symptom.Name, err)
			continue
		}
	}

	log.Println("Seeding complete. Run cmd/indexer to build the embedding indexes.")
}
