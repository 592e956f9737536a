package interview

import (
	"fmt"
	"strings"
)

// FeedbackSection scores one skill area, e.g. Communication or
// Structure (STAR).
type FeedbackSection struct {
	Area         string   `json:"area"`
	Score        int      `json:"score_out_of_5"`
	Summary      string   `json:"summary"`
	Improvements []string `json:"areas_for_improvement"`
}

// InterviewFeedback is the structured report produced once per session at
// conclusion. Instances coming back from the evaluation collaborator must
// pass Validate before being surfaced.
type InterviewFeedback struct {
	OverallAssessment string            `json:"overall_assessment"`
	Sections          []FeedbackSection `json:"sections"`
}

// Validate rejects structurally invalid feedback: scores outside [1,5],
// empty text fields, or an empty section list.
func (f *InterviewFeedback) Validate() error {
	if strings.TrimSpace(f.OverallAssessment) == "" {
		return fmt.Errorf("overall assessment is empty")
	}
	if len(f.Sections) == 0 {
		return fmt.Errorf("feedback has no sections")
	}
	for i, section := range f.Sections {
		if strings.TrimSpace(section.Area) == "" {
			return fmt.Errorf("section %d: area is empty", i)
		}
		if section.Score < 1 || section.Score > 5 {
			return fmt.Errorf("section %q: score %d outside [1,5]", section.Area, section.Score)
		}
		if strings.TrimSpace(section.Summary) == "" {
			return fmt.Errorf("section %q: summary is empty", section.Area)
		}
		for j, item := range section.Improvements {
			if strings.TrimSpace(item) == "" {
				return fmt.Errorf("section %q: improvement %d is empty", section.Area, j)
			}
		}
	}
	return nil
}
