// Package codec parses and serializes the two wire formats exchanged between
// stages: the line-oriented routing directive and the JSON specialist
// contract.
package codec

import (
	"fmt"
	"strings"

	contractx "github.com/assessor-ai/assessor/agent/contract"
)

const directiveMarker = "ROUTE="

const (
	keyRoute    = "ROUTE"
	keyQuestion = "PERGUNTA_ORIGINAL"
	keyPersona  = "PERSONA"
	keyClarify  = "CLARIFY"
)

var directiveKeys = map[string]bool{
	keyRoute:    true,
	keyQuestion: true,
	keyPersona:  true,
	keyClarify:  true,
}

// IsDirective reports whether the router payload is a forwarding directive.
// Anything not beginning with the ROUTE= marker is a direct answer.
func IsDirective(payload string) bool {
	return strings.HasPrefix(strings.TrimSpace(payload), directiveMarker)
}

// DecodeDirective parses the forwarding protocol. Each line is KEY=VALUE,
// split on the first '=' so values may themselves contain '='. Lines that do
// not start a known key are folded into the previous value, which lets a
// multi-line PERSONA block survive. Returns ErrMalformedDirective when ROUTE
// is absent or names an unknown domain.
func DecodeDirective(payload string) (contractx.RouteDirective, error) {
	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, directiveMarker) {
		return contractx.RouteDirective{}, fmt.Errorf("%w: payload does not start with %s", contractx.ErrMalformedDirective, directiveMarker)
	}

	fields := map[string]string{}
	current := ""
	for _, line := range strings.Split(trimmed, "\n") {
		key, value, ok := splitField(line)
		if ok {
			fields[key] = value
			current = key
			continue
		}
		if current == "" {
			return contractx.RouteDirective{}, fmt.Errorf("%w: line %q precedes any field", contractx.ErrMalformedDirective, line)
		}
		fields[current] += "\n" + line
	}

	domain := contractx.Domain(strings.TrimSpace(fields[keyRoute]))
	if !domain.Known() {
		return contractx.RouteDirective{}, fmt.Errorf("%w: unknown domain %q", contractx.ErrMalformedDirective, string(domain))
	}

	return contractx.RouteDirective{
		Domain:           domain,
		OriginalQuestion: strings.TrimSpace(fields[keyQuestion]),
		Persona:          strings.TrimSpace(fields[keyPersona]),
		Clarify:          strings.TrimSpace(fields[keyClarify]),
	}, nil
}

func splitField(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, '=')
	if idx <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	if !directiveKeys[key] {
		return "", "", false
	}
	return key, line[idx+1:], true
}

// EncodeDirective renders a directive back into the forwarding protocol. It
// round-trips through DecodeDirective.
func EncodeDirective(d contractx.RouteDirective) string {
	var b strings.Builder
	b.WriteString(keyRoute + "=" + string(d.Domain) + "\n")
	b.WriteString(keyQuestion + "=" + d.OriginalQuestion + "\n")
	b.WriteString(keyPersona + "=" + d.Persona + "\n")
	b.WriteString(keyClarify + "=" + d.Clarify)
	return b.String()
}
