// Package prompt collects the prompt-engineering techniques used across the
// workflows: zero-shot, one-shot, few-shot and chain-of-thought templates,
// output parsers, and a small chain that runs template, model and parser in
// sequence.
//
// Templates are langchaingo prompts using Go template syntax:
//
//	tmpl := prompt.OneShot()
//	text, err := tmpl.Format(map[string]any{
//		"example":     prompt.RefundPolicyExample,
//		"policy_type": "remote work",
//	})
//
// A Chain binds a template to a model and a parser:
//
//	chain := prompt.NewChain[[]string](prompt.BenefitsList(), model, prompt.NewListParser(),
//		llms.WithTemperature(0))
//	benefits, err := chain.Run(ctx, map[string]any{"technology": "cloud computing"})
//
// Compare runs every technique against one problem and reports simple
// quality checks for each answer.
package prompt
