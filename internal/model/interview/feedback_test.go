package interview

import (
	"strings"
	"testing"
)

func validFeedback() InterviewFeedback {
	return InterviewFeedback{
		OverallAssessment: "Solid performance with room to grow.",
		Sections: []FeedbackSection{
			{
				Area:         "Communication",
				Score:        4,
				Summary:      "Clear and structured answers.",
				Improvements: []string{"Pause before answering."},
			},
			{
				Area:         "Technical Knowledge",
				Score:        3,
				Summary:      "Good fundamentals, shallow on internals.",
				Improvements: []string{"Review indexing strategies."},
			},
		},
	}
}

func TestValidateAcceptsWellFormedFeedback(t *testing.T) {
	fb := validFeedback()
	if err := fb.Validate(); err != nil {
		t.Fatalf("Validate err: %v", err)
	}
}

func TestValidateScoreBounds(t *testing.T) {
	for _, score := range []int{0, 6, -1, 100} {
		fb := validFeedback()
		fb.Sections[0].Score = score
		if err := fb.Validate(); err == nil {
			t.Errorf("score %d: expected validation error", score)
		}
	}
	for score := 1; score <= 5; score++ {
		fb := validFeedback()
		fb.Sections[0].Score = score
		if err := fb.Validate(); err != nil {
			t.Errorf("score %d: unexpected error: %v", score, err)
		}
	}
}

func TestValidateRejectsEmptyFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InterviewFeedback)
	}{
		{"empty overall", func(f *InterviewFeedback) { f.OverallAssessment = "  " }},
		{"no sections", func(f *InterviewFeedback) { f.Sections = nil }},
		{"empty area", func(f *InterviewFeedback) { f.Sections[0].Area = "" }},
		{"empty summary", func(f *InterviewFeedback) { f.Sections[1].Summary = "" }},
		{"empty improvement", func(f *InterviewFeedback) { f.Sections[0].Improvements = []string{" "} }},
	}

	for _, tc := range tests {
		fb := validFeedback()
		tc.mutate(&fb)
		if err := fb.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestValidateErrorNamesSection(t *testing.T) {
	fb := validFeedback()
	fb.Sections[1].Score = 9
	err := fb.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Technical Knowledge") {
		t.Fatalf("error should name the offending section, got: %v", err)
	}
}
