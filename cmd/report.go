package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"stockroom/internal/analytics"
	"stockroom/internal/inventory/movements"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLowStockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "low-stock",
		Short: "List items below their safety stock, largest deficit first.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd, true); err != nil {
				return err
			}
			items, err := a.container.StockService.GetStockItems(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ARTICLE\tNAME\tLOCATION\tSTOCK\tSAFETY\tDEFICIT")
			for _, s := range analytics.ItemsBelowSafetyStock(items) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n", s.ArticleNumber, s.ProductName, s.Location, s.Stock, s.SafetyStock, s.Deficit)
			}
			return w.Flush()
		},
	}
}

func newOutstandingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "outstanding [article...]",
		Short: "Show who still holds taken items, per article.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, true); err != nil {
				return err
			}
			net, err := a.container.Movements.OutstandingFor(cmd.Context(), args)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ARTICLE\tUSER\tQUANTITY")
			for _, line := range movements.SortedOutstanding(net) {
				fmt.Fprintf(w, "%s\t%s\t%d\n", line.ArticleNumber, line.UserName, line.Quantity)
			}
			return w.Flush()
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the analytics table, movement log and low stock list to an xlsx file.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd, true); err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = filepath.Join(a.cfg.ExportDir, fmt.Sprintf("stockroom-%s.xlsx", time.Now().UTC().Format("20060102-150405")))
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := a.container.Exporter.ExportWorkbook(cmd.Context(), f); err != nil {
				f.Close()
				os.Remove(out)
				return fmt.Errorf("export: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}

			a.logger.Info("workbook written", zap.String("path", out))
			return nil
		},
	}
	cmd.Flags().String("out", "", "Output file (defaults to a timestamped file in EXPORT_DIR)")
	return cmd
}
