package engine

import (
	"errors"

	contractx "github.com/assessor-ai/assessor/agent/contract"
	sessionx "github.com/assessor-ai/assessor/agent/session"
)

// Translate converts a turn error into the Portuguese description shown to
// the end user. The taxonomy sentinels map to fixed messages; anything else
// gets the generic one.
func Translate(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, contractx.ErrUpstreamUnavailable):
		return "Desculpe, estou com instabilidade para acessar meus serviços agora. Tente novamente em instantes."
	case errors.Is(err, contractx.ErrMalformedDirective):
		return "Desculpe, não consegui encaminhar sua solicitação desta vez. Pode reformular a pergunta?"
	case errors.Is(err, contractx.ErrMalformedContract):
		return "Desculpe, recebi uma resposta inválida do especialista. Pode tentar novamente?"
	case errors.Is(err, contractx.ErrUnknownRoute):
		return "Desculpe, ainda não sei tratar esse tipo de pedido. Posso ajudar com finanças ou agenda."
	case errors.Is(err, sessionx.ErrInvalidSession):
		return "Desculpe, não reconheci esta sessão de conversa."
	default:
		return "Desculpe, não consegui processar sua mensagem. Pode tentar novamente?"
	}
}
