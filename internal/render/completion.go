package render

import (
	"fmt"
	"strings"

	"github.com/ykvlv/sidekick-bot/internal/domain"
	"github.com/ykvlv/sidekick-bot/internal/ledger"
)

// CompletionReport describes each requested completion and the total awarded.
func CompletionReport(rep ledger.CompletionReport) string {
	var b strings.Builder
	for _, it := range rep.Items {
		label := "default"
		if it.Source == domain.SourceCustom {
			label = "custom"
		}
		switch it.Outcome {
		case ledger.Awarded:
			fmt.Fprintf(&b, "Marked %s task '%s' as completed (+%d).\n", label, it.Description, it.Points)
		case ledger.AlreadyCompleted:
			fmt.Fprintf(&b, "%s task '%s' already completed.\n", capitalize(label), it.Description)
		default:
			fmt.Fprintf(&b, "Task number %d is invalid.\n", it.Index)
		}
	}
	fmt.Fprintf(&b, "Total points awarded: %d.", rep.Awarded)
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
