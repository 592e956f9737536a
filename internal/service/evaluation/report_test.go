package evaluation

import (
	"strings"
	"testing"

	"github.com/voiceprep/interview-agent/internal/model/interview"
)

func TestRenderReportLayout(t *testing.T) {
	feedback := &interview.InterviewFeedback{
		OverallAssessment: "Strong showing overall.",
		Sections: []interview.FeedbackSection{
			{Area: "Communication", Score: 4, Summary: "Clear answers.", Improvements: []string{"Slow down.", "Use STAR."}},
			{Area: "Technical Knowledge", Score: 3, Summary: "Decent depth.", Improvements: []string{"Study indexes."}},
		},
	}

	report := RenderReport("Data Analyst", feedback)

	for _, want := range []string{
		"--- INTERVIEW CONCLUDED FOR DATA ANALYST ---",
		"Overall Assessment:\nStrong showing overall.",
		"*** Communication (Score: 4/5) ***",
		"*** Technical Knowledge (Score: 3/5) ***",
		"ACTIONABLE IMPROVEMENT PLAN:",
		">> Communication <<",
		">> Technical Knowledge <<",
		"  - Slow down.",
		"  - Use STAR.",
		"  - Study indexes.",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q\n%s", want, report)
		}
	}

	// The improvement plan preserves section order and item order.
	commIdx := strings.Index(report, ">> Communication <<")
	techIdx := strings.Index(report, ">> Technical Knowledge <<")
	if commIdx == -1 || techIdx == -1 || commIdx > techIdx {
		t.Fatalf("improvement plan out of order: comm=%d tech=%d", commIdx, techIdx)
	}
	slowIdx := strings.Index(report, "- Slow down.")
	starIdx := strings.Index(report, "- Use STAR.")
	if slowIdx == -1 || starIdx == -1 || slowIdx > starIdx {
		t.Fatalf("improvement items out of order: %d, %d", slowIdx, starIdx)
	}
}
