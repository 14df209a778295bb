package engine

import (
	"sort"
	"strconv"

	"agricensus/internal/model"
)

// Terminal is the sentinel next-question code marking the end of the interview.
const Terminal = "__terminal__"

// Node is one question of the graph with its outgoing edges
type Node struct {
	Question model.Question
	// DefaultNext is the next question code in global order, or Terminal for
	// the last question.
	DefaultNext string
	// Overrides maps an option value to its explicit goto target.
	Overrides map[string]string
}

// Graph is the immutable navigation graph of one questionnaire version.
// Built once per version and shared read-only by every interview session.
type Graph struct {
	QuestionnaireID string
	Version         int

	nodes map[string]*Node
	order []string // question codes in global order
}

// OverrideTriple is one exported override edge
type OverrideTriple struct {
	QuestionCode string `json:"questionCode"`
	OptionValue  string `json:"optionValue"`
	TargetCode   string `json:"targetCode"`
}

// BuildGraph indexes a flattened question snapshot into a navigation graph.
// The global order is (volet.ordre, section.ordre, numeric suffix of code).
// It only indexes; dangling goto targets are left for the validator.
func BuildGraph(questionnaireID string, version int, questions []model.Question) (*Graph, error) {
	g := &Graph{
		QuestionnaireID: questionnaireID,
		Version:         version,
		nodes:           make(map[string]*Node, len(questions)),
	}

	sorted := make([]model.Question, len(questions))
	copy(sorted, questions)
	for _, q := range sorted {
		if q.Code == "" {
			return nil, &MalformedQuestionnaireError{Reason: "question without code"}
		}
		if q.VoletOrdre <= 0 || q.SectionOrdre <= 0 {
			return nil, &MalformedQuestionnaireError{QuestionCode: q.Code, Reason: "missing ordering metadata"}
		}
		if _, err := codeRank(q.Code); err != nil {
			return nil, &MalformedQuestionnaireError{QuestionCode: q.Code, Reason: "code has no numeric suffix"}
		}
		if _, dup := g.nodes[q.Code]; dup {
			return nil, &MalformedQuestionnaireError{QuestionCode: q.Code, Reason: "duplicate code"}
		}
		g.nodes[q.Code] = &Node{Question: q}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.VoletOrdre != b.VoletOrdre {
			return a.VoletOrdre < b.VoletOrdre
		}
		if a.SectionOrdre != b.SectionOrdre {
			return a.SectionOrdre < b.SectionOrdre
		}
		ra, _ := codeRank(a.Code)
		rb, _ := codeRank(b.Code)
		return ra < rb
	})

	g.order = make([]string, len(sorted))
	for i, q := range sorted {
		g.order[i] = q.Code
	}

	for i, code := range g.order {
		node := g.nodes[code]
		if i+1 < len(g.order) {
			node.DefaultNext = g.order[i+1]
		} else {
			node.DefaultNext = Terminal
		}
		for _, opt := range node.Question.Options {
			if opt.GotoTarget == "" {
				continue
			}
			if node.Overrides == nil {
				node.Overrides = make(map[string]string)
			}
			node.Overrides[opt.Value] = opt.GotoTarget
		}
	}

	return g, nil
}

// First returns the code of the first question in global order.
func (g *Graph) First() (string, bool) {
	if len(g.order) == 0 {
		return "", false
	}
	return g.order[0], true
}

// Node returns the node for a question code.
func (g *Graph) Node(code string) (*Node, bool) {
	n, ok := g.nodes[code]
	return n, ok
}

// Len returns the number of questions in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Codes returns the question codes in global order.
func (g *Graph) Codes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// OverrideTriples exports every override edge in global order, options in
// declared order. Rebuilding a graph from the same snapshot reproduces an
// identical triple set.
func (g *Graph) OverrideTriples() []OverrideTriple {
	var out []OverrideTriple
	for _, code := range g.order {
		for _, opt := range g.nodes[code].Question.Options {
			if opt.GotoTarget == "" {
				continue
			}
			out = append(out, OverrideTriple{
				QuestionCode: code,
				OptionValue:  opt.Value,
				TargetCode:   opt.GotoTarget,
			})
		}
	}
	return out
}

// codeRank extracts the numeric suffix of a question code ("Q006" -> 6).
func codeRank(code string) (int, error) {
	i := len(code)
	for i > 0 && code[i-1] >= '0' && code[i-1] <= '9' {
		i--
	}
	if i == len(code) {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(code[i:])
}
