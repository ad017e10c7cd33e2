package wizard

import (
	"strconv"
	"strings"

	"github.com/mark3labs/resumescan/internal/flow"
	"github.com/mark3labs/resumescan/internal/tui/theme"
)

// renderStepIndicator draws "1 ─ 2 ─ 3 ─ 4". An indicator, and the connector
// leading to it, is active once the wizard has reached that step.
func renderStepIndicator(current flow.Step) string {
	s := theme.Current().S()
	var b strings.Builder
	for n := flow.StepUpload; n <= flow.StepResults; n++ {
		active := current >= n
		if n > flow.StepUpload {
			connector := s.ConnectorInactive
			if active {
				connector = s.ConnectorActive
			}
			b.WriteString(connector.Render(" ─── "))
		}
		indicator := s.StepInactive
		if active {
			indicator = s.StepActive
		}
		b.WriteString(indicator.Render(strconv.Itoa(int(n))))
	}
	return b.String()
}
