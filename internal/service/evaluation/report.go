package evaluation

import (
	"fmt"
	"strings"

	"github.com/voiceprep/interview-agent/internal/model/interview"
)

// RenderReport lays out validated feedback as plain text: overall assessment,
// each section with score and summary, then a consolidated improvement plan
// regrouping every section's items under its area, in section order.
func RenderReport(role string, feedback *interview.InterviewFeedback) string {
	var b strings.Builder

	fmt.Fprintf(&b, "--- INTERVIEW CONCLUDED FOR %s ---\n\n", strings.ToUpper(role))
	b.WriteString("Overall Assessment:\n")
	b.WriteString(feedback.OverallAssessment)
	b.WriteString("\n")

	for _, section := range feedback.Sections {
		b.WriteString("\n")
		fmt.Fprintf(&b, "*** %s (Score: %d/5) ***\n", section.Area, section.Score)
		fmt.Fprintf(&b, "Summary: %s\n", section.Summary)
	}

	b.WriteString("\n----------------------------------------\n")
	b.WriteString("ACTIONABLE IMPROVEMENT PLAN:\n")

	for _, section := range feedback.Sections {
		fmt.Fprintf(&b, "\n>> %s <<\n", section.Area)
		b.WriteString("Actionable Steps:\n")
		for _, step := range section.Improvements {
			fmt.Fprintf(&b, "  - %s\n", step)
		}
	}

	return b.String()
}
