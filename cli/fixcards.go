package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpcards/pipeline"
)

func newFixCardsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fixcards",
		Short: "重新判定存量项目联系人的归属",
		Long:  "遍历所有 project 角色的名片提及，按电话匹配重新判定归属公司，迁移错挂的提及并清理孤儿名片。",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := pipeline.NewReattributor(a.db, a.logger).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("检查 %d 条提及，迁移 %d 条，清理孤儿名片 %d 张\n",
				report.Checked, report.Moved, report.Orphans)
			return nil
		},
	}
}
