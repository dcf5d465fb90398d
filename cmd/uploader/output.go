package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/LDanielOchoa/Programacion-Areas/internal/normalizer"
	"github.com/LDanielOchoa/Programacion-Areas/internal/orchestrator"
	"github.com/LDanielOchoa/Programacion-Areas/internal/reconcile"
)

// printError 按错误类型输出可操作的说明
func printError(w io.Writer, err error) {
	var (
		validation *orchestrator.ValidationFailedError
		mismatch   *orchestrator.EmployeeMismatchError
		year       *normalizer.YearMismatchError
		header     *normalizer.UnresolvedDateHeaderError
		apiErr     *reconcile.APIError
	)

	fmt.Fprintf(w, "错误: %v\n", err)

	switch {
	case errors.As(err, &validation):
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "单元格\t值\t问题\t建议")
		for _, e := range validation.Errors {
			fmt.Fprintf(tw, "%s\t%q\t%s\t%s\n", e.Cell, e.Value, e.Message, e.Suggestion)
		}
		_ = tw.Flush()

	case errors.As(err, &mismatch):
		for _, e := range mismatch.Employees {
			fmt.Fprintf(w, "  %s  %s\n", e.Cedula, e.Nombre)
		}

	case errors.As(err, &year):
		for _, d := range year.Dates {
			fmt.Fprintf(w, "  %s\n", d)
		}

	case errors.As(err, &header):
		for _, h := range header.Headers {
			fmt.Fprintf(w, "  %q\n", h)
		}

	case errors.As(err, &apiErr) && apiErr.Class == reconcile.ClassAuth:
		fmt.Fprintln(w, "会话无效或已过期，请先执行 uploader login --area <区域>")
	}
}

// printDetail 调试模式下输出诊断信息
func printDetail(w io.Writer, res *orchestrator.Result) {
	if res != nil && res.Detail != "" {
		fmt.Fprintf(w, "诊断: %s\n", res.Detail)
	}
}

func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintf(w, "警告: %s\n", msg)
	}
}
