// Command uploader 读取区域排班 Excel，校验后通过后端接口保存
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	areaFlag   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "uploader",
		Short:         "上传区域排班表与异常记录",
		Long:          `uploader 读取 "Formato programación" 或 "Formato de novedades" 工作簿，完成格式校验、员工与日期核对后写入排班库。`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径（默认 ./config/config.yaml）")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
	rootCmd.PersistentFlags().StringVarP(&areaFlag, "area", "a", "", "区域（Operaciones、Lavado、Vigilantes 等）")

	rootCmd.AddCommand(
		newValidateCmd(),
		newScheduleCmd(),
		newNovedadesCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newAreasCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		stop()
		os.Exit(1)
	}
}
