package questionbank

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func analystBank() *Bank {
	return New(map[string]map[string][]string{
		"data_analyst": {
			"Behavioral": {"Tell me about a time..."},
			"Technical":  {"Explain SQL joins"},
		},
	})
}

func TestQuestionTraceableToBank(t *testing.T) {
	bank := analystBank()
	want := map[string]bool{
		"Let's try a Behavioral question: Tell me about a time...": true,
		"Let's try a Technical question: Explain SQL joins":        true,
	}

	for i := 0; i < 20; i++ {
		got := bank.Question("Data Analyst")
		if !want[got] {
			t.Fatalf("question not traceable to bank: %q", got)
		}
	}
}

func TestQuestionRoleNormalization(t *testing.T) {
	bank := analystBank()
	for _, role := range []string{"data analyst", "Data Analyst", "DATA ANALYST", "data_analyst", "  data analyst  "} {
		if got := bank.Question(role); got == FallbackQuestion {
			t.Errorf("role %q: fell back to generic question", role)
		}
	}
}

func TestQuestionUnknownRoleFallsBack(t *testing.T) {
	bank := analystBank()
	if got := bank.Question("Astronaut"); got != FallbackQuestion {
		t.Fatalf("unknown role: got %q want fallback", got)
	}
}

func TestEmptyBankFallsBack(t *testing.T) {
	bank := New(nil)
	if got := bank.Question("Data Analyst"); got != FallbackQuestion {
		t.Fatalf("empty bank: got %q want fallback", got)
	}

	// Categories with no questions are dropped rather than failing later.
	bank = New(map[string]map[string][]string{"data_analyst": {"Technical": {}}})
	if got := bank.Question("Data Analyst"); got != FallbackQuestion {
		t.Fatalf("empty categories: got %q want fallback", got)
	}
}

func TestRolesListing(t *testing.T) {
	bank := New(map[string]map[string][]string{
		"software_engineer": {"Technical": {"q"}},
		"data_analyst":      {"Behavioral": {"q"}},
	})

	got := bank.Roles()
	want := []string{"Data Analyst", "Software Engineer"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Roles: got %v want %v", got, want)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	payload := `{"data_analyst": {"Technical": ["Explain SQL joins"]}}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatal(err)
	}

	bank, err := Load(path)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	got := bank.Question("data analyst")
	if !strings.Contains(got, "Explain SQL joins") {
		t.Fatalf("unexpected question: %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}
