package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/vroom/internal/config"
	"github.com/John-Robertt/vroom/internal/log"
	"github.com/John-Robertt/vroom/internal/watch"
)

func newWatchCmd(rf *rootFlags) *cobra.Command {
	var fold bool
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "监听库目录，新出现的视频文件即时识别（每个文件输出一行 JSON）",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()

			cwd, err := os.Getwd()
			if err != nil {
				fmt.Fprintf(stderr, "读取当前目录失败：%v\n", err)
				return &exitError{code: 1}
			}
			cli := config.CLIArgs{
				LogLevel:       rf.logLevel,
				FoldUnicode:    fold,
				FoldUnicodeSet: cmd.Flags().Changed("fold-unicode"),
			}
			if len(args) > 0 {
				cli.Path = args[0]
			}
			eff, err := config.LoadEffective(cwd, cli)
			if err != nil {
				fmt.Fprintf(stderr, "配置错误（%s）：%v\n", config.Code(err), err)
				return &exitError{code: 1}
			}

			logger := log.FromContext(cmd.Context(), "watch")
			if lvl, e := zerolog.ParseLevel(eff.LogLevel); e == nil && eff.LogLevel != "" {
				logger = logger.Level(lvl)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			excl := append([]string(nil), eff.ExcludeDirs...)
			excl = append(excl, eff.CacheRoot())
			err = watch.Run(ctx, eff.Path, watch.Options{
				ExcludeDirs: excl,
				Extensions:  eff.Extensions,
				Fold:        eff.FoldUnicode,
				Logger:      logger,
			}, func(ev watch.Event) {
				_ = enc.Encode(toLine(ev.RelPath, ev.Class))
			})
			if err != nil {
				fmt.Fprintf(stderr, "watch 失败：%v\n", err)
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fold, "fold-unicode", false, "识别前做 NFC + 全角折叠（覆盖配置中的 fold_unicode）")
	return cmd
}
