package output_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dayoung-oh/lunchspin/internal/service/output"
)

func TestBuildEnvelope(t *testing.T) {
	env := output.BuildEnvelope("Seocho-gu, Seoul", 800, map[string]any{"ok": true}, nil, nil)
	if env.Meta["address"] != "Seocho-gu, Seoul" {
		t.Fatalf("expected address meta, got %v", env.Meta["address"])
	}
	if env.Meta["radius_m"] != 800 {
		t.Fatalf("expected radius meta 800, got %v", env.Meta["radius_m"])
	}
	requestID, _ := env.Meta["request_id"].(string)
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected uuid request_id, got %q: %v", requestID, err)
	}
	generatedAt, _ := env.Meta["generated_at"].(string)
	if !strings.HasSuffix(generatedAt, "Z") {
		t.Fatalf("expected generated_at to end with Z, got %q", generatedAt)
	}
	if len(env.Warnings) != 0 {
		t.Fatalf("expected empty warnings, got %v", env.Warnings)
	}
}

func TestRenderPayload(t *testing.T) {
	env := output.BuildEnvelope("Seocho-gu, Seoul", 800, map[string]any{"ok": true}, []string{"warn"}, nil)

	jsonPayload, err := output.RenderPayload(env, output.FormatJSON)
	if err != nil {
		t.Fatalf("render json failed: %v", err)
	}
	if !strings.Contains(jsonPayload, "\"ok\": true") {
		t.Fatalf("expected json payload to include data, got %s", jsonPayload)
	}

	yamlPayload, err := output.RenderPayload(env, output.FormatYAML)
	if err != nil {
		t.Fatalf("render yaml failed: %v", err)
	}
	if !strings.Contains(yamlPayload, "radius_m: 800") {
		t.Fatalf("expected yaml payload to include radius, got %s", yamlPayload)
	}
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	if _, err := output.ParseFormat("xml"); err == nil {
		t.Fatal("expected unsupported format error")
	}
	format, err := output.ParseFormat("")
	if err != nil || format != output.FormatTable {
		t.Fatalf("expected empty value to default to table, got %v (%v)", format, err)
	}
}

func TestRenderTable(t *testing.T) {
	table := output.RenderTable("Places", []string{"NAME", "WALK"}, [][]string{{"Kimchi House", "1 min"}})
	if !strings.Contains(table, "Places") || !strings.Contains(table, "Kimchi House\t1 min") {
		t.Fatalf("unexpected table rendering:\n%s", table)
	}
}
