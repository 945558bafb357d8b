package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "显示数据库统计",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.db.GetStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("公告: %d\n名片: %d\n提及: %d\n",
				stats.Announcements, stats.Cards, stats.Mentions)
			return nil
		},
	}
}
