package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smallnest/langgraphlab/prebuilt"
	"github.com/smallnest/langgraphlab/tool"
)

func newGreetCmd(a *app) *cobra.Command {
	var name, suffix string
	cmd := &cobra.Command{
		Use:   "greet",
		Short: "Run the greet -> enhance pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var extra []prebuilt.Option
			if suffix != "" {
				extra = append(extra, prebuilt.WithSuffix(suffix))
			}
			r, err := prebuilt.CreateGreetingPipeline(a.workflowOptions(extra...)...)
			if err != nil {
				return err
			}
			out, err := r.InvokeWithConfig(cmd.Context(), prebuilt.GreetingState{Name: name}, a.runConfig())
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			p.Title("Greeting")
			p.Field("Greeting", out.Greeting)
			a.noteRun(p)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Alice", "name to greet")
	cmd.Flags().StringVar(&suffix, "suffix", "", "text appended by the enhance step")
	return cmd
}

func newContentCmd(a *app) *cobra.Command {
	var topic string
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Run the outline -> draft -> review pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := prebuilt.CreateContentPipeline(a.workflowOptions()...)
			if err != nil {
				return err
			}
			out, err := r.InvokeWithConfig(cmd.Context(), prebuilt.ContentState{Topic: topic}, a.runConfig())
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			p.Title("Content: " + topic)
			p.Field("Outline", out.Outline)
			p.Field("Draft", out.Draft)
			p.Field("Final", out.Final)
			a.noteRun(p)
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "AI Safety", "topic to write about")
	return cmd
}

func newRouteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "route <query>...",
		Short: "Route queries by length to a quick or detailed answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := prebuilt.CreateQueryRouter(a.workflowOptions()...)
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			p.Title("Query router")
			for _, q := range args {
				out, err := r.InvokeWithConfig(cmd.Context(), prebuilt.QueryState{Query: q}, a.runConfig())
				if err != nil {
					return err
				}
				p.Field(out.QueryLength, out.Response)
			}
			a.noteRun(p)
			return nil
		},
	}
}

func newCalcCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "calc <question>",
		Short: "Answer a math question with the calculator tool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.model()
			if err != nil {
				return err
			}
			r, err := prebuilt.CreateCalculatorAgent(model, a.workflowOptions()...)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			out, err := r.InvokeWithConfig(cmd.Context(), prebuilt.CalculatorState{Query: query}, a.runConfig())
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			p.Title("Calculator agent")
			p.Field("Query", query)
			p.Field("Math", out.IsMath)
			p.Field("Result", out.Result)
			a.noteRun(p)
			return nil
		},
	}
}

func newResearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "research <question>",
		Short: "Answer by calculation or web search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.model()
			if err != nil {
				return err
			}
			searcher, err := a.searcher()
			if err != nil {
				return err
			}
			r, err := prebuilt.CreateResearchAgent(model, searcher, a.workflowOptions()...)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			out, err := r.InvokeWithConfig(cmd.Context(), prebuilt.ResearchState{Query: query}, a.runConfig())
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			p.Title("Research agent")
			p.Field("Query", query)
			p.Field("Type", out.QueryType)
			p.Panel(out.Result)
			a.noteRun(p)
			return nil
		},
	}
}

func (a *app) searcher() (tool.Searcher, error) {
	switch a.cfg.Search.Provider {
	case "brave":
		s, err := tool.NewBraveSearch(a.cfg.Search.BraveAPIKey)
		if err != nil {
			return nil, fmt.Errorf("brave search: %w", err)
		}
		return s, nil
	default:
		return tool.NewDuckDuckGo(), nil
	}
}
