// Package prompt embeds the Portuguese system prompts and few-shot examples
// every conversation stage runs with.
package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/financial.txt
	financialRaw string

	//go:embed template/agenda.txt
	agendaRaw string

	//go:embed template/faq.txt
	faqRaw string
)

// PromptSet holds loaded prompt content. The strings still carry the {today}
// format variable; stages substitute it at invoke time.
type PromptSet struct {
	Router    string
	Financial string
	Agenda    string
	FAQ       string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Router:    strings.TrimSpace(routerRaw),
		Financial: strings.TrimSpace(financialRaw),
		Agenda:    strings.TrimSpace(agendaRaw),
		FAQ:       strings.TrimSpace(faqRaw),
	}
}
