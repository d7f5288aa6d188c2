package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/vroom/internal/app/run"
	"github.com/John-Robertt/vroom/internal/config"
	"github.com/John-Robertt/vroom/internal/domain"
	"github.com/John-Robertt/vroom/internal/infra/cache"
	"github.com/John-Robertt/vroom/internal/infra/fsx"
	"github.com/John-Robertt/vroom/internal/log"
)

func newScanCmd(rf *rootFlags) *cobra.Command {
	var (
		fold        bool
		writeReport bool
	)
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "扫描库目录并分类所有视频文件",
		Long: `扫描库目录并分类所有视频文件。

未指定 path 时必须在当前目录放置 vroom.toml 且包含 path 字段。
stdout 非 TTY 时输出且只输出一个报告 JSON；进度与日志只写 stderr。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

			cwd, err := os.Getwd()
			if err != nil {
				fmt.Fprintf(stderr, "读取当前目录失败：%v\n", err)
				return &exitError{code: 1}
			}
			cwdAbs, _ := filepath.Abs(cwd)

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
				emitReport(stdout, stderr, reportForConfigError(cwdAbs, err))
				return &exitError{code: 1}
			}

			logger := log.FromContext(cmd.Context(), "scan")
			if lvl, e := zerolog.ParseLevel(eff.LogLevel); e == nil && eff.LogLevel != "" {
				logger = logger.Level(lvl)
			}

			var obs run.Observer = newLogObserver(logger)
			if isTTY(stderr) {
				obs = newProgressUI(stderr)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rr := run.ExecuteWithObserver(ctx, eff, obs)

			if writeReport {
				store := cache.New(eff.CacheRoot(), false)
				if err := writeReportFile(store, rr); err != nil {
					if fsx.IsPathTypeConflict(err) {
						fmt.Fprintf(stderr, "写入 report.json 失败：目标位置已有同名目录，请移走后重试：%v\n", err)
					} else {
						fmt.Fprintf(stderr, "写入 report.json 失败：%v\n", err)
					}
					emitReport(stdout, stderr, rr)
					return &exitError{code: 1}
				}
				logger.Info().
					Str(log.FieldRunID, rr.RunID).
					Str(log.FieldPath, filepath.Join(store.Dir, cache.ReportName)).
					Msg("report written")
			}

			emitReport(stdout, stderr, rr)
			if rr.Summary.Failed > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fold, "fold-unicode", false, "识别前做 NFC + 全角折叠（覆盖配置中的 fold_unicode）")
	cmd.Flags().BoolVar(&writeReport, "write-report", false, "把报告写入 <cache_dir>/report.json（默认 <path>/cache/）")
	return cmd
}

func emitReport(stdout, stderr io.Writer, rr domain.ScanReport) {
	summary := fmt.Sprintf("完成：files=%d jav=%d slr=%d unmatched=%d failed=%d\n",
		rr.Summary.Files, rr.Summary.JAV, rr.Summary.SLR, rr.Summary.Unmatched, rr.Summary.Failed,
	)

	if isTTY(stdout) {
		fmt.Fprint(stdout, summary)
		for _, it := range rr.Items {
			if it.Kind != domain.KindFailed && it.Kind != domain.KindUnmatched {
				continue
			}
			key := it.Code
			if key == "" && len(it.Files) > 0 {
				// unmatched/config 等合成条目：用首个输入文件路径做定位锚点。
				key = it.Files[0].Src
			}
			if key == "" {
				key = "<unknown>"
			}
			fmt.Fprintf(stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 ScanReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(stdout)
	_ = enc.Encode(rr)
	fmt.Fprint(stderr, summary)
}

func reportForConfigError(cwdAbs string, err error) domain.ScanReport {
	now := time.Now().UTC()
	rr := domain.ScanReport{
		Path:       cwdAbs,
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Kind:      domain.KindFailed,
			ErrorCode: config.Code(err),
			ErrorMsg:  err.Error(),
			Files:     []domain.FileResult{},
		}},
	}
	rr.Finalize()
	return rr
}

func writeReportFile(store cache.Store, rr domain.ScanReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return store.WriteReport(b)
}
