package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"stockroom/internal/inventory/inventory_log"
	"stockroom/internal/inventory/issues"
	"stockroom/internal/inventory/movements"
	"stockroom/internal/projects"
	"stockroom/pkg/roles"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the most active users, the most taken items and the most reported items.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd, true); err != nil {
				return err
			}
			ctx := cmd.Context()

			items, err := a.container.StockRepository.ItemsByArticle(ctx)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(items))
			for article, item := range items {
				names[article] = item.ProductName
			}
			events, err := a.container.Movements.AllEvents(ctx)
			if err != nil {
				return err
			}
			reports, err := a.container.Issues.AllIssues(ctx)
			if err != nil {
				return err
			}
			stats := movements.NewStats(events, names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tTAKEN")
			for _, u := range stats.TopUsers() {
				fmt.Fprintf(w, "%s\t%d\n", u.UserName, u.Quantity)
			}
			fmt.Fprintln(w, "\nARTICLE\tNAME\tTAKEN")
			for _, i := range stats.TopItems() {
				fmt.Fprintf(w, "%s\t%s\t%d\n", i.ArticleNumber, i.ProductName, i.Quantity)
			}
			fmt.Fprintln(w, "\nARTICLE\tNAME\tREPORTS")
			for _, c := range movements.IssueCounts(reports) {
				fmt.Fprintf(w, "%s\t%s\t%d\n", c.ArticleNumber, c.ProductName, c.Reports)
			}
			return w.Flush()
		},
	}
}

func newConfirmCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Apply a JSON list of scanned movements to stock and the movement log.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, _ := cmd.Flags().GetString("user")
			if user == "" {
				return fmt.Errorf("--user is required")
			}
			path, _ := cmd.Flags().GetString("file")

			var in io.Reader = cmd.InOrStdin()
			if path != "" && path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			var batch []inventorylog.Movement
			if err := json.NewDecoder(in).Decode(&batch); err != nil {
				return fmt.Errorf("decode movements: %w", err)
			}

			if err := a.load(cmd, true); err != nil {
				return err
			}
			result, err := a.container.InventoryLog.Confirm(cmd.Context(), user, batch)
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "processed %d of %d\n", result.Processed, len(batch))
			}
			return err
		},
	}
	cmd.Flags().String("user", "", "User confirming the movements")
	cmd.Flags().String("file", "-", "JSON file with the movements, - for stdin")
	return cmd
}

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project management.",
	}
	cmd.PersistentFlags().String("user", "", "Acting username")
	cmd.PersistentFlags().String("name", "", "Acting display name")
	cmd.PersistentFlags().String("role", string(roles.Worker), "Acting role: worker, master or admin")

	cmd.AddCommand(&cobra.Command{
		Use:   "status <project-number> <status>",
		Short: "Set the status of a project.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor := actorFromFlags(cmd)
			if !actor.Role.IsValid() {
				return fmt.Errorf("unknown role %q", actor.Role)
			}
			if err := a.load(cmd, true); err != nil {
				return err
			}
			status, err := a.container.Projects.SetStatus(cmd.Context(), args[0], actor, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", args[0], status)
			return nil
		},
	})
	return cmd
}

func actorFromFlags(cmd *cobra.Command) projects.Actor {
	user, _ := cmd.Flags().GetString("user")
	name, _ := cmd.Flags().GetString("name")
	role, _ := cmd.Flags().GetString("role")
	return projects.Actor{Username: user, Name: name, Role: roles.Parse(role)}
}

func newReportIssueCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report-issue <article> <issue>...",
		Short: "Report a problem with an item.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			req := issues.IssueReportRequest{ArticleNumber: args[0], Issues: args[1:]}
			if cmd.Flags().Changed("count") {
				count, _ := cmd.Flags().GetInt("count")
				req.Count = &count
			}

			if err := a.load(cmd, true); err != nil {
				return err
			}
			report, err := a.container.Issues.ReportIssue(cmd.Context(), user, req)
			if err != nil {
				return err
			}
			a.logger.Debug("issue stored", zap.String("id", report.ID))
			fmt.Fprintln(cmd.OutOrStdout(), report.ID)
			return nil
		},
	}
	cmd.Flags().String("user", "", "Reporting user")
	cmd.Flags().Int("count", 1, "Number of affected pieces")
	return cmd
}

func newIssuesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issues",
		Short: "List reported issues.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd, true); err != nil {
				return err
			}
			user, _ := cmd.Flags().GetString("user")
			article, _ := cmd.Flags().GetString("article")

			reports, err := a.container.Issues.IssuesFor(cmd.Context(), issues.IssueFilter{UserName: user, Article: article})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIMESTAMP\tARTICLE\tNAME\tISSUE\tCOUNT\tUSER")
			for _, r := range reports {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", r.Timestamp, r.ArticleNumber, r.ProductName, r.Issue, r.Count, r.UserName)
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("user", "", "Only reports by this user (substring)")
	cmd.Flags().String("article", "", "Only reports for this article number or product name (substring)")
	return cmd
}
