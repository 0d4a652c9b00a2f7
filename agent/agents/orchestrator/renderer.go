// Package orchestrator turns a specialist's JSON contract into the final
// user-facing text. Rendering is deterministic: no model call sits between
// the contract and the user.
package orchestrator

import (
	"fmt"
	"strings"

	contractx "github.com/assessor-ai/assessor/agent/contract"
)

const (
	recommendationHeader = "- *Recomendação*:"
	followUpHeader       = "- *Acompanhamento* (opcional):"
)

// Render produces the reply for one contract. The resposta goes out verbatim
// as the first line. The recommendation section appears only when
// recomendacao is non-empty. For the follow-up section esclarecer wins over
// acompanhamento; with neither, the section is omitted. The output is never
// JSON.
func Render(res contractx.SpecialistResult) (string, error) {
	reply := strings.TrimSpace(res.Reply)
	if reply == "" {
		return "", fmt.Errorf("%w: empty resposta", contractx.ErrMalformedContract)
	}

	var b strings.Builder
	b.WriteString(reply)

	if rec := strings.TrimSpace(res.Recommendation); rec != "" {
		b.WriteString("\n")
		b.WriteString(recommendationHeader)
		b.WriteString("\n")
		b.WriteString(rec)
	}

	followUp := strings.TrimSpace(res.Clarify)
	if followUp == "" {
		followUp = strings.TrimSpace(res.FollowUp)
	}
	if followUp != "" {
		b.WriteString("\n")
		b.WriteString(followUpHeader)
		b.WriteString("\n")
		b.WriteString(followUp)
	}

	return b.String(), nil
}
