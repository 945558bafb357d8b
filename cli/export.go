package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpcards/database"
	"gpcards/export"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		format string
		what   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出名片或公告数据",
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := export.NewExporter(a.cfg.ExportDir)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var path string
			switch what {
			case "cards":
				cards, err := a.db.GetBusinessCards(ctx, database.CardQuery{})
				if err != nil {
					return err
				}
				if format == "csv" {
					path, err = exporter.CardsToCSV(cards)
				} else {
					path, err = exporter.CardsToExcel(cards)
				}
				if err != nil {
					return err
				}
			case "announcements":
				records, err := a.db.GetAnnouncements(ctx, "", 0)
				if err != nil {
					return err
				}
				if format == "csv" {
					path, err = exporter.AnnouncementsToCSV(records)
				} else {
					path, err = exporter.AnnouncementsToExcel(records)
				}
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("未知导出对象 %q，支持 cards 或 announcements", what)
			}

			fmt.Printf("已导出到 %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "xlsx", "导出格式: xlsx|csv")
	cmd.Flags().StringVar(&what, "type", "cards", "导出对象: cards|announcements")
	return cmd
}
