package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medvend/backend/internal/domain/entities"
	"github.com/medvend/backend/internal/domain/providers"
	"github.com/medvend/backend/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.OpenAIConfig{
		APIKey:       "test-key",
		RateLimitRPM: -1, // no limiter in tests
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client.baseURL = server.URL
	return client
}

func responsesEnvelope(text string) string {
	envelope := map[string]interface{}{
		"output": []map[string]interface{}{
			{"content": []map[string]string{{"type": "output_text", "text": text}}},
		},
	}
	raw, _ := json.Marshal(envelope)
	return string(raw)
}

const recommendationJSON = `{
	"main_medicines": [{"name": "Paracetamol", "quantity_per_dose": 2, "reason": "fever"}],
	"supporting_medicines": [],
	"doses_per_day": 3,
	"total_days": 2,
	"recommendation_reasoning": "classic fever presentation",
	"diagnosis": "common cold",
	"severity_level": "mild",
	"should_see_doctor": false
}`

func TestClient_Analyze_ParsesRecommendation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/responses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.Write([]byte(responsesEnvelope(recommendationJSON)))
	})

	rec, err := client.Analyze(context.Background(), entities.PatientProfile{Symptoms: "fever"}, "• Paracetamol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.MainMedicines) != 1 || rec.MainMedicines[0].Name != "Paracetamol" {
		t.Errorf("unexpected main medicines: %+v", rec.MainMedicines)
	}
	if rec.DosesPerDay != 3 || rec.TotalDays != 2 {
		t.Errorf("unexpected schedule: %d doses, %d days", rec.DosesPerDay, rec.TotalDays)
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("parsed recommendation should validate: %v", err)
	}
}

func TestClient_Analyze_StripsMarkdownFences(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(responsesEnvelope("```json\n" + recommendationJSON + "\n```")))
	})

	rec, err := client.Analyze(context.Background(), entities.PatientProfile{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Diagnosis != "common cold" {
		t.Errorf("unexpected diagnosis %q", rec.Diagnosis)
	}
}

func TestClient_Analyze_ErrorStatusIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Analyze(context.Background(), entities.PatientProfile{}, "")
	if !errors.Is(err, providers.ErrReasoningUnavailable) {
		t.Errorf("expected ErrReasoningUnavailable, got %v", err)
	}
}

func TestClient_Analyze_GarbagePayloadIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(responsesEnvelope("I think the patient has a cold.")))
	})

	_, err := client.Analyze(context.Background(), entities.PatientProfile{}, "")
	if !errors.Is(err, providers.ErrReasoningUnavailable) {
		t.Errorf("expected ErrReasoningUnavailable, got %v", err)
	}
}

func TestClient_EmbedBatch_PreservesOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		// out-of-order response indices must map back to input positions
		w.Write([]byte(`{"data": [
			{"index": 1, "embedding": [0, 1]},
			{"index": 0, "embedding": [1, 0]}
		]}`))
	})

	vectors, err := client.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Errorf("embeddings not reordered by index: %v", vectors)
	}
}

func TestClient_EmbedBatch_IncompleteResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"index": 0, "embedding": [1, 0]}]}`))
	})

	_, err := client.EmbedBatch(context.Background(), []string{"first", "second"})
	if err == nil {
		t.Fatal("expected error for incomplete response")
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	if _, err := NewClient(&config.OpenAIConfig{}); err == nil {
		t.Fatal("expected error without api key")
	}
	if _, err := NewClient(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
