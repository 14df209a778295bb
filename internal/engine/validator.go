package engine

import "strings"

// FindingKind classifies a structural validation finding
type FindingKind string

const (
	FindingDanglingReference   FindingKind = "dangling_reference"
	FindingCycle               FindingKind = "cycle"
	FindingUnreachableQuestion FindingKind = "unreachable_question"
)

// Finding is one structural defect of the graph. Findings block publication
// but are never raised during a live interview.
type Finding struct {
	Kind         FindingKind `json:"kind"`
	QuestionCode string      `json:"questionCode,omitempty"`
	OptionValue  string      `json:"optionValue,omitempty"`
	Target       string      `json:"target,omitempty"`
	// Cycle holds the ordered question codes forming a cycle, closing on the
	// first element.
	Cycle []string `json:"cycle,omitempty"`
}

// CoverageStats summarizes how much of the questionnaire uses skip logic
type CoverageStats struct {
	Questions              int     `json:"questions"`
	QuestionsWithOverrides int     `json:"questionsWithOverrides"`
	OverrideEdges          int     `json:"overrideEdges"`
	SkipLogicPercent       float64 `json:"skipLogicPercent"`
}

// Report is the outcome of a full validation pass
type Report struct {
	Findings []Finding     `json:"findings"`
	Coverage CoverageStats `json:"coverage"`
}

// HasBlocking reports whether the report contains findings that make the
// graph unsafe to publish (dangling references or cycles). Unreachable
// questions are advisory only.
func (r *Report) HasBlocking() bool {
	for _, f := range r.Findings {
		if f.Kind == FindingDanglingReference || f.Kind == FindingCycle {
			return true
		}
	}
	return false
}

// Validate runs the four static checks over a built graph: dangling override
// targets, cycles reachable from the first question, unreachable questions,
// and branch coverage statistics. Administrative tooling runs this before
// publishing a version; the runtime engine never does.
func Validate(g *Graph) *Report {
	report := &Report{}
	report.Findings = append(report.Findings, danglingReferences(g)...)
	report.Findings = append(report.Findings, cycles(g)...)
	report.Findings = append(report.Findings, unreachable(g)...)
	report.Coverage = coverage(g)
	return report
}

func danglingReferences(g *Graph) []Finding {
	var out []Finding
	for _, code := range g.Codes() {
		node, _ := g.Node(code)
		for _, opt := range node.Question.Options {
			if opt.GotoTarget == "" {
				continue
			}
			if _, ok := g.Node(opt.GotoTarget); !ok {
				out = append(out, Finding{
					Kind:         FindingDanglingReference,
					QuestionCode: code,
					OptionValue:  opt.Value,
					Target:       opt.GotoTarget,
				})
			}
		}
	}
	return out
}

// successors lists every code reachable in one step: the default edge plus
// all valid override targets. Terminal and dangling targets are excluded.
func successors(g *Graph, code string) []string {
	node, ok := g.Node(code)
	if !ok {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	if node.DefaultNext != Terminal {
		out = append(out, node.DefaultNext)
		seen[node.DefaultNext] = true
	}
	for _, opt := range node.Question.Options {
		target := opt.GotoTarget
		if target == "" || seen[target] {
			continue
		}
		if _, exists := g.Node(target); !exists {
			continue
		}
		out = append(out, target)
		seen[target] = true
	}
	return out
}

func cycles(g *Graph) []Finding {
	first, ok := g.First()
	if !ok {
		return nil
	}

	var out []Finding
	reported := make(map[string]bool)
	onPath := make(map[string]int) // code -> index on current path
	var path []string

	var visit func(code string)
	visit = func(code string) {
		onPath[code] = len(path)
		path = append(path, code)
		for _, next := range successors(g, code) {
			if idx, on := onPath[next]; on {
				cycle := append([]string(nil), path[idx:]...)
				if key := strings.Join(rotateToMin(cycle), ">"); !reported[key] {
					reported[key] = true
					out = append(out, Finding{Kind: FindingCycle, QuestionCode: cycle[0], Cycle: cycle})
				}
				continue
			}
			visit(next)
		}
		path = path[:len(path)-1]
		delete(onPath, code)
	}
	visit(first)
	return out
}

// rotateToMin rotates a cycle so its lexically smallest code comes first,
// giving the same cycle a stable dedup key regardless of entry point.
func rotateToMin(cycle []string) []string {
	min := 0
	for i, c := range cycle {
		if c < cycle[min] {
			min = i
		}
	}
	return append(append([]string(nil), cycle[min:]...), cycle[:min]...)
}

// effectiveSuccessors mirrors the paths an interview takes on well-formed
// data. The default edge is excluded when every declared option of a choice
// question carries an override: only a no-match answer would fall through,
// and a question reachable solely through the no-match fallback deserves a
// finding.
func effectiveSuccessors(g *Graph, code string) []string {
	node, ok := g.Node(code)
	if !ok {
		return nil
	}
	if !node.Question.Type.IsChoice() || len(node.Question.Options) == 0 {
		return successors(g, code)
	}
	for _, opt := range node.Question.Options {
		if opt.GotoTarget == "" {
			return successors(g, code)
		}
	}

	var out []string
	seen := make(map[string]bool)
	for _, opt := range node.Question.Options {
		target := opt.GotoTarget
		if seen[target] {
			continue
		}
		if _, exists := g.Node(target); !exists {
			continue
		}
		out = append(out, target)
		seen[target] = true
	}
	return out
}

func unreachable(g *Graph) []Finding {
	first, ok := g.First()
	if !ok {
		return nil
	}

	reachable := make(map[string]bool)
	stack := []string{first}
	for len(stack) > 0 {
		code := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[code] {
			continue
		}
		reachable[code] = true
		stack = append(stack, effectiveSuccessors(g, code)...)
	}

	var out []Finding
	for _, code := range g.Codes() {
		if code == first || reachable[code] {
			continue
		}
		out = append(out, Finding{Kind: FindingUnreachableQuestion, QuestionCode: code})
	}
	return out
}

func coverage(g *Graph) CoverageStats {
	stats := CoverageStats{Questions: g.Len()}
	for _, code := range g.Codes() {
		node, _ := g.Node(code)
		if len(node.Overrides) == 0 {
			continue
		}
		stats.QuestionsWithOverrides++
		stats.OverrideEdges += len(node.Overrides)
	}
	if stats.Questions > 0 {
		stats.SkipLogicPercent = 100 * float64(stats.QuestionsWithOverrides) / float64(stats.Questions)
	}
	return stats
}
