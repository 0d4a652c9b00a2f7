package contract

import "context"

// Router is the single decision point per turn. The returned text is either a
// direct reply or the line-oriented forwarding protocol; the engine decides
// which via the codec.
type Router interface {
	Route(ctx context.Context, req RouterRequest) (string, error)
}

// Specialist turns a forwarded directive into the JSON contract.
type Specialist interface {
	Run(ctx context.Context, req SpecialistRequest) (SpecialistResult, error)
}

// ProseSpecialist answers with terminal user-facing text instead of the
// contract. The FAQ route uses this and bypasses the orchestrator.
type ProseSpecialist interface {
	Answer(ctx context.Context, req SpecialistRequest) (string, error)
}

// Registry gives the engine access to the stages keyed by route.
type Registry interface {
	Router() Router
	Financial() Specialist
	Agenda() Specialist
	FAQ() ProseSpecialist
}

// ToolGateway executes a batch of planned tool calls for a domain.
// Collaborator failures must come back as error-status ToolResults; a Go
// error means the gateway itself could not run.
type ToolGateway interface {
	Execute(ctx context.Context, domain Domain, reqs []ToolRequest) ([]ToolResult, error)
}

// Retriever is the FAQ document index.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]Passage, error)
}
