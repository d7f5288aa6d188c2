package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/vroom/internal/app"
	"github.com/John-Robertt/vroom/internal/config"
	"github.com/John-Robertt/vroom/internal/infra/cache"
	"github.com/John-Robertt/vroom/internal/infra/httpx"
	"github.com/John-Robertt/vroom/internal/listing"
	"github.com/John-Robertt/vroom/internal/log"
	"github.com/John-Robertt/vroom/internal/media"
)

func newListingCmd() *cobra.Command {
	var (
		libPath string
		proxy   string
		refresh bool
		noCache bool
		fold    bool
	)
	cmd := &cobra.Command{
		Use:   "listing <url|file>",
		Short: "识别 HTML 目录索引页（autoindex/下载列表）中的视频文件名",
		Long: `识别 HTML 目录索引页中的视频文件名，每个文件名输出一行 JSON。

只读取文件名，不下载视频。指定 --path（或当前目录存在 vroom.toml）时，
proxy.url / extensions / fold_unicode / cache_dir 取自配置，抓取的页面缓存到 <cache_dir>/listings/。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			logger := log.FromContext(cmd.Context(), "listing")

			eff, useConfig, err := loadOptionalConfig(libPath, config.CLIArgs{
				FoldUnicode:    fold,
				FoldUnicodeSet: cmd.Flags().Changed("fold-unicode"),
			})
			if err != nil {
				fmt.Fprintf(stderr, "配置错误（%s）：%v\n", config.Code(err), err)
				return &exitError{code: 1}
			}
			if !useConfig {
				eff.FoldUnicode = fold
			}
			if proxy == "" {
				proxy = eff.ProxyURL
			}

			client, err := httpx.NewClient(httpx.Options{
				Proxy:     proxy,
				UserAgent: "vroom/" + version,
			})
			if err != nil {
				fmt.Fprintf(stderr, "proxy 无效：%v\n", err)
				return &exitError{code: 2}
			}

			opts := listing.Options{
				Client:     client,
				Refresh:    refresh,
				ExtPattern: media.ExtPattern(eff.Extensions...),
			}
			if useConfig && !noCache {
				store := cache.New(eff.CacheRoot(), false)
				opts.Cache = &store
			}

			names, err := listing.Load(cmd.Context(), args[0], opts)
			if err != nil {
				fmt.Fprintf(stderr, "读取 listing 失败：%v\n", err)
				return &exitError{code: 1}
			}
			logger.Info().Str("source", args[0]).Int("files", len(names)).Msg("listing loaded")

			enc := json.NewEncoder(cmd.OutOrStdout())
			copts := app.Options{Fold: eff.FoldUnicode}
			for _, name := range names {
				if err := enc.Encode(toLine(name, app.ClassifyName(name, copts))); err != nil {
					return &exitError{code: 1}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&libPath, "path", "", "库目录（读取其中的 vroom.toml）")
	cmd.Flags().StringVar(&proxy, "proxy", "", "HTTP 代理（覆盖配置中的 proxy.url）")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "忽略已有缓存重新抓取")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "不读写缓存")
	cmd.Flags().BoolVar(&fold, "fold-unicode", false, "识别前做 NFC + 全角折叠")
	return cmd
}

// loadOptionalConfig 只在指定了 path 或 cwd 下存在 vroom.toml 时加载配置；
// 否则返回仅含默认扩展名的配置，useConfig=false。
func loadOptionalConfig(path string, cli config.CLIArgs) (eff config.EffectiveConfig, useConfig bool, err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, false, err
	}
	if path == "" {
		if _, err := os.Stat(filepath.Join(cwd, config.FileName)); err != nil {
			return config.EffectiveConfig{Extensions: media.DefaultExtensions()}, false, nil
		}
	}
	cli.Path = path
	eff, err = config.LoadEffective(cwd, cli)
	if err != nil {
		return config.EffectiveConfig{}, false, err
	}
	return eff, true, nil
}
