package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LDanielOchoa/Programacion-Areas/internal/dto"
	"github.com/LDanielOchoa/Programacion-Areas/internal/orchestrator"
	"github.com/LDanielOchoa/Programacion-Areas/internal/validator"
	"github.com/LDanielOchoa/Programacion-Areas/internal/workbook"
)

// ═══════════════════════════════════════════════════════════
// validate：只做本地校验，不连接后端
// ═══════════════════════════════════════════════════════════

func newValidateCmd() *cobra.Command {
	var (
		file string
		kind string
		fix  bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "校验工作簿格式，列出全部错误",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			k, err := workbook.ParseKind(kind)
			if err != nil {
				return err
			}
			wb, err := readWorkbook(cmd.Context(), a.cfg, a.logger, file, k)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if k == workbook.KindNovedades {
				doc, err := validator.ParseNovedades(wb.Matrix, a.logger)
				if err != nil {
					return err
				}
				printWarnings(out, doc.Warnings)
				fmt.Fprintf(out, "工作表 %q 校验通过，共 %d 条异常记录\n", wb.SheetName, len(doc.Rows))
				return nil
			}

			doc, err := validator.ParseFormato(wb.Matrix, wb.LunchRules)
			if err != nil {
				return err
			}
			if fix {
				if n := validator.AutoFix(doc); n > 0 {
					fmt.Fprintf(out, "已自动补全 %d 个班次的前导零\n", n)
				}
			}
			if errs := validator.ValidateRows(doc); len(errs) > 0 {
				return &orchestrator.ValidationFailedError{Errors: errs}
			}
			fmt.Fprintf(out, "工作表 %q 校验通过，共 %d 名员工、%d 个日期列\n",
				wb.SheetName, len(doc.Employees()), len(doc.DateColumns))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Excel 文件路径（.xlsx / .xls）")
	cmd.Flags().StringVarP(&kind, "kind", "k", string(workbook.KindFormato), "工作簿类型：formato 或 novedades")
	cmd.Flags().BoolVar(&fix, "fix", false, "自动补全小时的前导零")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// ═══════════════════════════════════════════════════════════
// schedule：保存排班
// ═══════════════════════════════════════════════════════════

func newScheduleCmd() *cobra.Command {
	var (
		file    string
		confirm bool
		fix     bool
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "校验并保存区域排班表",
		RunE: func(cmd *cobra.Command, _ []string) error {
			area, err := requireArea()
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			wb, err := readWorkbook(cmd.Context(), a.cfg, a.logger, file, workbook.KindFormato)
			if err != nil {
				return err
			}
			doc, err := validator.ParseFormato(wb.Matrix, wb.LunchRules)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if fix {
				if n := validator.AutoFix(doc); n > 0 {
					fmt.Fprintf(out, "已自动补全 %d 个班次的前导零\n", n)
				}
			}

			orch := a.orchestrator(out)
			res, err := orch.SaveSchedule(cmd.Context(), doc, area, orchestrator.Options{ConfirmExistingDates: confirm})

			var collision *orchestrator.DateCollisionError
			if errors.As(err, &collision) && !confirm {
				if !askConfirm(cmd.InOrStdin(), out, collision) {
					return errors.New("已取消保存")
				}
				res, err = orch.SaveSchedule(cmd.Context(), doc, area, orchestrator.Options{ConfirmExistingDates: true})
			}
			if err != nil {
				printDetail(cmd.ErrOrStderr(), res)
				return err
			}
			fmt.Fprintf(out, "%s（%d 条记录）\n", res.Message, res.RecordCount)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Excel 文件路径（.xlsx / .xls）")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "已有排班的日期直接确认覆盖，不再询问")
	cmd.Flags().BoolVar(&fix, "fix", false, "保存前自动补全小时的前导零")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// ═══════════════════════════════════════════════════════════
// novedades：保存异常记录
// ═══════════════════════════════════════════════════════════

func newNovedadesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "novedades",
		Short: "校验并保存排班异常记录",
		RunE: func(cmd *cobra.Command, _ []string) error {
			area, err := requireArea()
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			wb, err := readWorkbook(cmd.Context(), a.cfg, a.logger, file, workbook.KindNovedades)
			if err != nil {
				return err
			}
			doc, err := validator.ParseNovedades(wb.Matrix, a.logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printWarnings(out, doc.Warnings)

			res, err := a.orchestrator(out).SaveNovedades(cmd.Context(), doc, area)
			if err != nil {
				printDetail(cmd.ErrOrStderr(), res)
				return err
			}
			fmt.Fprintf(out, "%s（%d 条记录）\n", res.Message, res.RecordCount)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Excel 文件路径（.xlsx / .xls）")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// ═══════════════════════════════════════════════════════════
// 区域会话
// ═══════════════════════════════════════════════════════════

func newLoginCmd() *cobra.Command {
	var (
		password   string
		rememberMe bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "使用区域密码登录，令牌保存在本地",
		RunE: func(cmd *cobra.Command, _ []string) error {
			area, err := requireArea()
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			if password == "" {
				fmt.Fprintf(out, "%s 区域密码: ", area.Info().Name)
				if password, err = readLine(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			res, err := a.client.Login(cmd.Context(), area, password, rememberMe)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "已登录 %s，有效期至 %s\n", res.Area.Name, res.ExpiresAt)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "区域密码（不提供时从标准输入读取）")
	cmd.Flags().BoolVar(&rememberMe, "remember-me", false, "延长会话有效期")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "注销区域会话并删除本地令牌",
		RunE: func(cmd *cobra.Command, _ []string) error {
			area, err := requireArea()
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.client.Logout(cmd.Context(), area); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已注销 %s\n", area.Info().Name)
			return nil
		},
	}
}

func newAreasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "列出可用区域",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, info := range dto.Areas() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", info.ID, info.Description)
			}
		},
	}
}

// ── 辅助 ──

func (a *app) orchestrator(out io.Writer) *orchestrator.Orchestrator {
	return orchestrator.New(orchestrator.Config{
		Backend: a.client,
		Debug:   a.cfg.App.IsDevelopment() || verbose,
		Logger:  a.logger,
		OnStage: func(stage orchestrator.Stage, message string) {
			fmt.Fprintf(out, "[%s] %s\n", stage, message)
		},
	})
}

func askConfirm(in io.Reader, out io.Writer, collision *orchestrator.DateCollisionError) bool {
	fmt.Fprintf(out, "%s\n是否继续保存？[y/N]: ", collision.Error())
	answer, err := readLine(in)
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
