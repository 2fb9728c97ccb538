package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/portfolio-ai/internal/apperr"
	"github.com/ziadkadry99/portfolio-ai/internal/insights"
	"github.com/ziadkadry99/portfolio-ai/internal/prompts"
	"github.com/ziadkadry99/portfolio-ai/internal/result"
)

var (
	reportCmd = &cobra.Command{
		Use:   "report <prompt>",
		Short: "Generate a dynamic portfolio report",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInsight(prompts.Report),
	}
	suggestCmd = &cobra.Command{
		Use:   "suggest",
		Short: "Generate prioritized action suggestions for the portfolio",
		Args:  cobra.NoArgs,
		RunE:  runInsight(prompts.Suggestions),
	}
	askCmd = &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the portfolio assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInsight(prompts.Chat),
	}
	explainCmd = &cobra.Command{
		Use:   "explain <indicator>",
		Short: "Explain a financial indicator with current portfolio data",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInsight(prompts.Explain),
	}
	searchCmd = &cobra.Command{
		Use:   "search <query>",
		Short: "Search portfolio documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInsight(prompts.Search),
	}
)

func init() {
	for _, c := range []*cobra.Command{reportCmd, suggestCmd, askCmd, explainCmd, searchCmd} {
		c.Flags().Bool("json", false, "print the full response envelope as JSON")
		rootCmd.AddCommand(c)
	}
	searchCmd.Flags().String("type", "", "filter by document type")
	searchCmd.Flags().String("area", "", "filter by area")
	searchCmd.Flags().String("project", "", "filter by project code")
	searchCmd.Flags().String("date-range", "", "YYYY-MM-DD..YYYY-MM-DD or last_N_days")
}

func runInsight(uc prompts.UseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background())
		if err != nil {
			return err
		}
		defer a.Close()

		req := insights.Request{UseCase: uc, Text: strings.Join(args, " ")}
		if uc == prompts.Search {
			req.Filters = searchFilters(cmd)
		}

		resp, runErr := a.engine.Run(a.context(cmd.Context()), req)
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return printEnvelope(cmd.OutOrStdout(), resp, runErr)
		}
		if runErr != nil {
			return fmt.Errorf("%s error: %s", apperr.KindOf(runErr), apperr.PublicMessage(runErr))
		}
		if err := printData(cmd.OutOrStdout(), uc, resp.Data); err != nil {
			return err
		}
		if resp.Outcome != "" && verbose {
			fmt.Fprintf(os.Stderr, "outcome=%s interaction=%s\n", resp.Outcome, resp.InteractionID)
		}
		return nil
	}
}

func searchFilters(cmd *cobra.Command) map[string]any {
	filters := map[string]any{}
	for flag, key := range map[string]string{
		"type":       "documentType",
		"area":       "area",
		"project":    "project",
		"date-range": "dateRange",
	} {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			filters[key] = v
		}
	}
	return filters
}

// printData writes prose answers as text and structured payloads as
// indented JSON.
func printData(w io.Writer, uc prompts.UseCase, data json.RawMessage) error {
	switch uc {
	case prompts.Chat:
		var answer result.ChatAnswer
		if err := json.Unmarshal(data, &answer); err == nil {
			_, err = fmt.Fprintln(w, answer.Response)
			return err
		}
	case prompts.Explain:
		var exp result.Explanation
		if err := json.Unmarshal(data, &exp); err == nil {
			_, err = fmt.Fprintln(w, exp.Explanation)
			return err
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("formatting response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func printEnvelope(w io.Writer, resp *insights.Response, runErr error) error {
	env := map[string]any{"ok": runErr == nil, "data": resp.Data}
	if runErr != nil {
		env["error"] = map[string]string{
			"kind":    string(apperr.KindOf(runErr)),
			"message": apperr.PublicMessage(runErr),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("request failed")
	}
	return nil
}
