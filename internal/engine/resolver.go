package engine

import "fmt"

// Next is the resolved destination after answering a question
type Next struct {
	Code     string `json:"code,omitempty"`
	Terminal bool   `json:"terminal"`
}

// ResolveNext returns the question following code given the matcher outcome.
// Non-choice questions always follow the default edge. For choice questions a
// matched option with an override jumps to its target; an unmatched answer
// falls through to the default edge so the interview never blocks on
// free-form data. The result is always a code present in the graph or
// Terminal: an override pointing outside the graph (a validator finding)
// degrades to the default edge at runtime.
func ResolveNext(g *Graph, code string, m Match, matched bool) (Next, error) {
	node, ok := g.Node(code)
	if !ok {
		return Next{}, fmt.Errorf("resolve next of %q: %w", code, ErrUnknownQuestion)
	}

	if node.Question.Type.IsChoice() && matched {
		if target, ok := node.Overrides[m.Option.Value]; ok {
			if _, exists := g.Node(target); exists {
				return Next{Code: target}, nil
			}
		}
	}

	if node.DefaultNext == Terminal {
		return Next{Terminal: true}, nil
	}
	return Next{Code: node.DefaultNext}, nil
}
