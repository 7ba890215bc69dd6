package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

// Technique names a prompting style.
type Technique string

const (
	TechniqueZeroShot       Technique = "zero_shot"
	TechniqueOneShot        Technique = "one_shot"
	TechniqueFewShot        Technique = "few_shot"
	TechniqueChainOfThought Technique = "chain_of_thought"
)

// Techniques lists the techniques in the order Compare runs them.
var Techniques = []Technique{TechniqueZeroShot, TechniqueOneShot, TechniqueFewShot, TechniqueChainOfThought}

// RemoteWorkProblem is the default comparison problem.
const RemoteWorkProblem = "Create an employee remote work policy"

var comparePrompts = map[Technique]prompts.PromptTemplate{
	TechniqueZeroShot: prompts.NewPromptTemplate("{{.problem}}", []string{"problem"}),
	TechniqueOneShot: prompts.NewPromptTemplate(`Example Policy:
VACATION POLICY
1. Eligibility: All full-time employees
2. Accrual: 15 days per year
3. Request: Submit 2 weeks in advance
4. Approval: Manager discretion

Now create: {{.problem}}`, []string{"problem"}),
	TechniqueFewShot: prompts.NewPromptTemplate(`Examples of our policy format:
- sick leave: 1. Coverage: 10 days/year
2. Documentation: Doctor's note after 3 days
- training: 1. Budget: $2000/employee/year
2. Approval: Required for external courses

Now create: {{.problem}}`, []string{"problem"}),
	TechniqueChainOfThought: prompts.NewPromptTemplate(`Think through this step-by-step:
1. Consider who needs remote work
2. Define eligibility criteria
3. Set communication requirements
4. Establish work hours and availability
5. Specify equipment and security needs

Problem: {{.problem}}

Work through each step to create the policy:`, []string{"problem"}),
}

// Result is one technique's answer to the comparison problem.
type Result struct {
	Technique    Technique
	Prompt       string
	Output       string
	HasStructure bool
	Specific     bool
}

// Length returns the answer length in characters.
func (r Result) Length() int {
	return len([]rune(r.Output))
}

// ComparePrompt renders the prompt a technique sends for problem.
func ComparePrompt(t Technique, problem string) (string, error) {
	tmpl, ok := comparePrompts[t]
	if !ok {
		return "", fmt.Errorf("unknown technique %q", t)
	}
	return tmpl.Format(map[string]any{"problem": problem})
}

// Compare runs every technique against problem with the same model and
// options. Results follow Techniques order.
func Compare(ctx context.Context, model llms.Model, problem string, options ...llms.CallOption) ([]Result, error) {
	results := make([]Result, 0, len(Techniques))
	for _, t := range Techniques {
		text, err := ComparePrompt(t, problem)
		if err != nil {
			return nil, err
		}
		out, err := llms.GenerateFromSinglePrompt(ctx, model, text, options...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
		lower := strings.ToLower(out)
		results = append(results, Result{
			Technique:    t,
			Prompt:       text,
			Output:       out,
			HasStructure: strings.Contains(lower, "numbered") || strings.Contains(out, "1."),
			Specific:     strings.Contains(lower, "employee") && strings.Contains(lower, "remote"),
		})
	}
	return results, nil
}

// MostDetailed returns the longest answer. The first wins ties.
func MostDetailed(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Length() > best.Length() {
			best = r
		}
	}
	return best, true
}
