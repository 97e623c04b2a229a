package assets

import (
	"embed"
	"strings"
)

//go:embed *.txt
var TextFS embed.FS

// OwnPrompt is offered alongside the journal prompts.
const OwnPrompt = "Your own prompt"

// JournalPrompts returns the journaling prompts, one per line of
// journal_prompts.txt, plus the free-topic option.
func JournalPrompts() []string {
	b, err := TextFS.ReadFile("journal_prompts.txt")
	if err != nil {
		return []string{OwnPrompt}
	}
	var res []string
	for _, line := range strings.Split(string(b), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			res = append(res, line)
		}
	}
	return append(res, OwnPrompt)
}

// Crisis returns the crisis support resources text.
func Crisis() string {
	b, err := TextFS.ReadFile("crisis.txt")
	if err != nil {
		return "If you're in immediate danger, call your local emergency services."
	}
	return strings.TrimSpace(string(b))
}
