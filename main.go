package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)
	root := &cobra.Command{
		Use:          "constraintkit",
		Short:        "求解约束布局并生成过渡动画",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			boot := newLogger(os.Stderr, log.InfoLevel)
			cfg, err := loadConfig(configPath, boot)
			if err != nil {
				return err
			}
			level := cfg.level()
			if verbose {
				level = log.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
	root.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（默认读取 ./"+defaultConfigFile+"）")

	root.AddCommand(newSolveCmd())
	root.AddCommand(newAnimateCmd())
	return root
}
