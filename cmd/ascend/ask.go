package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ascend-ai/ascend/core"
)

var (
	askFields     []string
	askFieldsJSON string
	askContext    []string
)

var askCmd = &cobra.Command{
	Use:   "ask <agent> <task_type>",
	Short: "Dispatch a typed task to an agent",
	Long: `Dispatch a typed task to a named agent (Coordinator, Planner, Notewriter
or Advisor). Task fields are supplied as repeated --field key=value pairs or
as one JSON object via --fields.`,
	Example: `  ascend ask Advisor provide_guidance --field student_id=s-1 --field challenge="exam anxiety"
  ascend ask Notewriter generate_quiz --fields '{"content": "...", "num_questions": 5}'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := collectFields()
		if err != nil {
			return err
		}
		taskCtx, err := parsePairs(askContext)
		if err != nil {
			return err
		}

		app, closeStore, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		task := core.NewTask(core.TaskType(args[1]), fields)
		resp := app.ProcessTask(cmd.Context(), args[0], task, taskCtx)

		if !resp.Success {
			return fmt.Errorf("task failed: %s", resp.Error)
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Content)
		return nil
	},
}

func init() {
	askCmd.Flags().StringArrayVar(&askFields, "field", nil, "task field as key=value (repeatable)")
	askCmd.Flags().StringVar(&askFieldsJSON, "fields", "", "task fields as a JSON object")
	askCmd.Flags().StringArrayVar(&askContext, "context", nil, "task context as key=value (repeatable)")
	rootCmd.AddCommand(askCmd)
}

// collectFields merges the JSON blob and the key=value pairs; pairs win on
// conflict so one-off overrides stay convenient.
func collectFields() (map[string]any, error) {
	fields := map[string]any{}
	if askFieldsJSON != "" {
		if err := json.Unmarshal([]byte(askFieldsJSON), &fields); err != nil {
			return nil, fmt.Errorf("parse --fields: %w", err)
		}
	}
	pairs, err := parsePairs(askFields)
	if err != nil {
		return nil, err
	}
	for k, v := range pairs {
		fields[k] = v
	}
	return fields, nil
}

func parsePairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", pair)
		}
		out[key] = value
	}
	return out, nil
}
