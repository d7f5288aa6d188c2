package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/vroom/internal/media"
	"github.com/John-Robertt/vroom/internal/slr"
)

func newSlrPatternCmd() *cobra.Command {
	var opts slr.PatternOptions
	cmd := &cobra.Command{
		Use:   "slr-pattern",
		Short: "打印 SLR 文件名匹配规则（正则文本）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := slr.Pattern(opts)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "参数错误：%v\n", err)
				return &exitError{code: 2}
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "^", `锚点："^"（文件名）或 "/"（完整路径）`)
	cmd.Flags().StringVar(&opts.Site, "site", "", "站点分支（默认 "+slr.DefaultSite+"）")
	cmd.Flags().StringVar(&opts.Studio, "studio", "", "厂牌分支（默认 "+slr.DefaultStudio+"）")
	cmd.Flags().BoolVar(&opts.Short, "short", false, "省略分辨率/ID/投影部分")
	return cmd
}

func newExtPatternCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ext-pattern [ext...]",
		Short: "打印视频扩展名匹配规则（无参数时使用默认扩展名）",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), media.ExtPattern(args...))
		},
	}
}
