package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"lingua_edu_backend/internal/app"
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"

	"github.com/spf13/cobra"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Inspect and edit goals through the tracker stores",
}

var goalAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		goalType, _ := cmd.Flags().GetString("type")
		category, _ := cmd.Flags().GetString("category")
		target, _ := cmd.Flags().GetInt("target")
		title, _ := cmd.Flags().GetString("title")

		return withTracker(func(ctx context.Context, t *app.Tracker) error {
			g, err := t.Goals.CreateGoalWithTitle(ctx, title, model.GoalType(goalType), model.GoalCategory(category), target)
			if err != nil {
				return err
			}
			fmt.Printf("Created goal %s\n", g.ID)
			return nil
		})
	},
}

var goalProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Report progress for every active goal in a category",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		amount, _ := cmd.Flags().GetInt("amount")

		return withTracker(func(ctx context.Context, t *app.Tracker) error {
			touched, err := t.Goals.ReportProgress(ctx, model.GoalCategory(category), amount)
			if err != nil {
				return err
			}
			return printGoals(touched)
		})
	},
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")

		return withTracker(func(ctx context.Context, t *app.Tracker) error {
			goals, err := t.Goals.ListGoals(model.GoalFilter(filter))
			if err != nil {
				return err
			}
			if len(goals) == 0 {
				fmt.Println("No goals found.")
				return nil
			}
			return printGoals(goals)
		})
	},
}

var goalCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark a goal completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(ctx context.Context, t *app.Tracker) error {
			g, err := t.Goals.CompleteGoal(ctx, args[0])
			if err != nil {
				return err
			}
			return printGoals([]model.Goal{*g})
		})
	},
}

var goalDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(func(ctx context.Context, t *app.Tracker) error {
			if err := t.Goals.DeleteGoal(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted goal %s\n", args[0])
			return nil
		})
	},
}

func withTracker(fn func(ctx context.Context, t *app.Tracker) error) error {
	cfg, err := loadConfig("tracker.log")
	if err != nil {
		return err
	}
	// 一次性命令不订阅进度事件
	cfg.NATS.Enabled = false

	tracker, err := app.NewTracker(context.Background(), cfg, "")
	if err != nil {
		return err
	}
	return tracker.RunOnce(fn)
}

func printGoals(goals []model.Goal) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tCATEGORY\tPROGRESS\tSTATUS\tCREATED\tTITLE")
	for _, g := range goals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\t%s\n",
			g.ID, g.Type, g.Category, g.Progress, g.Target, g.Status,
			g.CreatedAt.Format(util.TimeFormat), g.Title)
	}
	return w.Flush()
}

func init() {
	goalAddCmd.Flags().String("type", string(model.GoalDaily), "daily | weekly | monthly | custom")
	goalAddCmd.Flags().String("category", string(model.CategoryVocabulary), "vocabulary | lessons | practice | games | points")
	goalAddCmd.Flags().Int("target", 10, "目标值")
	goalAddCmd.Flags().String("title", "", "显示名称")

	goalProgressCmd.Flags().String("category", "", "目标分类")
	goalProgressCmd.Flags().Int("amount", 1, "增加的进度")
	_ = goalProgressCmd.MarkFlagRequired("category")

	goalListCmd.Flags().String("filter", string(model.GoalFilterAll), "all | active | completed")

	goalCmd.AddCommand(goalAddCmd, goalProgressCmd, goalListCmd, goalCompleteCmd, goalDeleteCmd)
}
