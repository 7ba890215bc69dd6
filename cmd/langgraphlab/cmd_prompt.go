package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langgraphlab/prompt"
	"github.com/smallnest/langgraphlab/render"
)

func newPromptCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Prompt-engineering labs",
	}
	cmd.AddCommand(
		newPromptZeroCmd(a),
		newPromptOneCmd(a),
		newPromptFewCmd(a),
		newPromptCoTCmd(a),
		newPromptCompareCmd(a),
		newPromptProfileCmd(a),
	)
	return cmd
}

// callOptions are the model settings shared by the prompt labs.
func (a *app) callOptions() []llms.CallOption {
	opts := []llms.CallOption{llms.WithTemperature(a.cfg.LLM.Temperature)}
	if a.cfg.LLM.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(a.cfg.LLM.MaxTokens))
	}
	return opts
}

// ask sends text to the model and prints it with the reply.
func (a *app) ask(cmd *cobra.Command, p *render.Printer, label, text string) (string, error) {
	model, err := a.model()
	if err != nil {
		return "", err
	}
	out, err := prompt.Ask(cmd.Context(), model, text, a.callOptions()...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", label, err)
	}
	p.Title(label)
	p.Field("Prompt", text)
	p.Panel(out)
	p.Field("Length", len([]rune(out)))
	return out, nil
}

func newPromptZeroCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "zero",
		Short: "Compare a vague and a specific zero-shot prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.printer(cmd)
			vague, err := a.ask(cmd, p, "Vague prompt", prompt.VaguePrompt)
			if err != nil {
				return err
			}
			specific, err := a.ask(cmd, p, "Specific prompt", prompt.SpecificPrompt)
			if err != nil {
				return err
			}
			p.Check("specific answer is longer", len([]rune(specific)) > len([]rune(vague)))
			return nil
		},
	}
}

func newPromptOneCmd(a *app) *cobra.Command {
	var policyType string
	cmd := &cobra.Command{
		Use:   "one",
		Short: "Write a policy in the format of one example",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := prompt.OneShot().Format(map[string]any{
				"example":     prompt.RefundPolicyExample,
				"policy_type": policyType,
			})
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			out, err := a.ask(cmd, p, "One-shot "+policyType+" policy", text)
			if err != nil {
				return err
			}
			check := prompt.CheckFormat(out)
			p.Check("numbered sections", check.Numbered)
			p.Check("same section names", check.Structured)
			return nil
		},
	}
	cmd.Flags().StringVar(&policyType, "policy-type", "remote work", "kind of policy to write")
	return cmd
}

func newPromptFewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "few [issue]...",
		Short: "Answer support issues in the tone of the examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			issues := args
			if len(issues) == 0 {
				issues = []string{"billing question", "product defect", "account locked"}
			}
			tmpl := prompt.FewShot(prompt.SupportExamples)
			p := a.printer(cmd)
			for _, issue := range issues {
				text, err := tmpl.Format(map[string]any{"input": issue})
				if err != nil {
					return err
				}
				out, err := a.ask(cmd, p, "Issue: "+issue, text)
				if err != nil {
					return err
				}
				check := prompt.CheckSupport(out)
				p.Check("empathy", check.Empathy)
				p.Check("action", check.Action)
				p.Check("timeline", check.Timeline)
				p.Field("Score", fmt.Sprintf("%d/3", check.Score()))
			}
			return nil
		},
	}
}

func newPromptCoTCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cot",
		Short: "Compare a direct prompt with step-by-step reasoning",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := a.printer(cmd)
			if _, err := a.ask(cmd, p, "Direct prompt", prompt.DirectPrompt); err != nil {
				return err
			}
			text, err := prompt.ChainOfThought().Format(map[string]any{
				"steps":   prompt.GDPRSteps,
				"problem": prompt.GDPRProblem,
			})
			if err != nil {
				return err
			}
			out, err := a.ask(cmd, p, "Chain of thought", text)
			if err != nil {
				return err
			}
			check := prompt.CheckReasoning(out)
			p.Check("follows the steps", check.Steps)
			p.Check("analyzes requirements", check.Analysis)
			p.Check("makes recommendations", check.Recommendations)
			return nil
		},
	}
}

func newPromptCompareCmd(a *app) *cobra.Command {
	var problem string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run every technique on one problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := a.model()
			if err != nil {
				return err
			}
			results, err := prompt.Compare(cmd.Context(), model, problem, a.callOptions()...)
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			for _, r := range results {
				p.Title(strings.ReplaceAll(string(r.Technique), "_", " "))
				p.Panel(r.Output)
				p.Field("Length", r.Length())
				p.Check("structured", r.HasStructure)
				p.Check("specific", r.Specific)
			}
			if best, ok := prompt.MostDetailed(results); ok {
				p.Note(fmt.Sprintf("most detailed: %s (%d characters)", best.Technique, best.Length()))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&problem, "problem", prompt.RemoteWorkProblem, "problem given to every technique")
	return cmd
}

func newPromptProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <technology>",
		Short: "Run the list, text and structured output chains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.model()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			values := map[string]any{"technology": args[0]}
			opts := a.callOptions()

			benefits, err := prompt.NewChain[[]string](prompt.BenefitsList(), model, prompt.NewListParser(), opts...).Run(ctx, values)
			if err != nil {
				return fmt.Errorf("benefits: %w", err)
			}
			useCases, err := prompt.NewChain[[]string](prompt.UseCaseList(), model, prompt.NewListParser(), opts...).Run(ctx, values)
			if err != nil {
				return fmt.Errorf("use cases: %w", err)
			}
			analysis, err := prompt.NewChain[string](prompt.Analysis(), model, prompt.TextParser{}, opts...).Run(ctx, values)
			if err != nil {
				return fmt.Errorf("analysis: %w", err)
			}
			parser := prompt.NewStructuredParser(prompt.TechnologyFields...)
			profile, err := prompt.NewChain[map[string]string](prompt.TechnologyProfile(parser), model, parser, opts...).Run(ctx, values)
			if err != nil {
				return fmt.Errorf("profile: %w", err)
			}

			p := a.printer(cmd)
			p.Title(args[0])
			p.Field("Benefits", strings.Join(benefits, "; "))
			p.Field("Use cases", strings.Join(useCases, "; "))
			p.Panel(analysis)
			for _, f := range prompt.TechnologyFields {
				p.Field(f.Name, profile[f.Name])
			}
			return nil
		},
	}
}
