// Package cli gpcards 命令行入口。
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"gpcards/config"
	"gpcards/database"
)

type app struct {
	cfg    *config.Config
	db     *database.DB
	logger *slog.Logger
}

// NewRootCommand 构建 gpcards 根命令。
func NewRootCommand() *cobra.Command {
	var configFile string
	a := &app{}

	root := &cobra.Command{
		Use:           "gpcards",
		Short:         "政府采购公告联系人采集工具",
		Long:          "从中国政府采购网的结果公告中提取采购人、代理机构与项目联系人，汇总为可查询、可导出的名片库。",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(cfg.LogLevel)
			slog.SetDefault(a.logger)

			db, err := database.New(cfg.DatabasePath)
			if err != nil {
				return err
			}
			a.db = db
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")

	root.AddCommand(
		newSearchCommand(a),
		newCardsCommand(a),
		newExportCommand(a),
		newStatsCommand(a),
		newFixCardsCommand(a),
	)
	return root
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
