package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/assessor-ai/assessor/agent/contract"
)

// specialistPayload mirrors SpecialistResult with pointers on the mandatory
// fields so presence can be checked: a syntactically valid object missing a
// mandatory key is a contract violation, not a default.
type specialistPayload struct {
	Domain         *string             `json:"dominio"`
	Intent         *string             `json:"intencao"`
	Reply          *string             `json:"resposta"`
	Recommendation *string             `json:"recomendacao"`
	FollowUp       string              `json:"acompanhamento"`
	Clarify        string              `json:"esclarecer"`
	TimeWindow     *contractx.TimeWindow `json:"janela_tempo"`
	Event          *contractx.Event    `json:"evento"`
	Write          *contractx.WriteOp  `json:"escrita"`
	Indicators     map[string]float64  `json:"indicadores"`
}

// DecodeResult parses a specialist's JSON output and validates it against the
// contract. want, when known, pins the domain the result must declare.
func DecodeResult(raw string, want contractx.Domain) (contractx.SpecialistResult, error) {
	text := stripFences(raw)
	if strings.TrimSpace(text) == "" {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: empty payload", contractx.ErrMalformedContract)
	}

	var payload specialistPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: %v", contractx.ErrMalformedContract, err)
	}

	if payload.Domain == nil || strings.TrimSpace(*payload.Domain) == "" {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: dominio is missing", contractx.ErrMalformedContract)
	}
	domain := contractx.Domain(strings.TrimSpace(*payload.Domain))
	if want.Known() && domain != want {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: dominio=%q, want %q", contractx.ErrMalformedContract, domain, want)
	}

	if payload.Intent == nil || strings.TrimSpace(*payload.Intent) == "" {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: intencao is missing", contractx.ErrMalformedContract)
	}
	intent := strings.TrimSpace(*payload.Intent)
	if !validIntent(domain, intent) {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: intencao=%q is not valid for dominio=%q", contractx.ErrMalformedContract, intent, domain)
	}

	if payload.Reply == nil || strings.TrimSpace(*payload.Reply) == "" {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: resposta is missing", contractx.ErrMalformedContract)
	}
	if payload.Recommendation == nil {
		return contractx.SpecialistResult{}, fmt.Errorf("%w: recomendacao is missing", contractx.ErrMalformedContract)
	}

	return contractx.SpecialistResult{
		Domain:         domain,
		Intent:         intent,
		Reply:          strings.TrimSpace(*payload.Reply),
		Recommendation: strings.TrimSpace(*payload.Recommendation),
		FollowUp:       strings.TrimSpace(payload.FollowUp),
		Clarify:        strings.TrimSpace(payload.Clarify),
		TimeWindow:     payload.TimeWindow,
		Event:          payload.Event,
		Write:          payload.Write,
		Indicators:     payload.Indicators,
	}, nil
}

func validIntent(domain contractx.Domain, intent string) bool {
	for _, v := range contractx.IntentsFor(domain) {
		if v == intent {
			return true
		}
	}
	return false
}

// stripFences removes a surrounding markdown code fence, which models often
// wrap JSON in despite instructions.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 && !strings.HasPrefix(text, "{") {
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
