package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/vroom/internal/app"
	"github.com/John-Robertt/vroom/internal/code"
	"github.com/John-Robertt/vroom/internal/domain"
	"github.com/John-Robertt/vroom/internal/log"
	"github.com/John-Robertt/vroom/internal/media"
)

// classifyLine 是 classify / listing 的单行 JSON 输出。
type classifyLine struct {
	Input string          `json:"input"`
	Kind  string          `json:"kind"`
	JAV   *domain.JavInfo `json:"jav,omitempty"`
	Code  string          `json:"code,omitempty"`
	SLR   *domain.SlrInfo `json:"slr,omitempty"`
	// 仅 kind=unmatched
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

func toLine(input string, fc app.FileClass) classifyLine {
	out := classifyLine{Input: input, Kind: fc.Kind}
	switch fc.Kind {
	case domain.KindJAV:
		jav := fc.Jav
		out.JAV = &jav
		out.Code = string(jav.Code())
	case domain.KindSLR:
		slr := fc.Slr
		out.SLR = &slr
		out.Code = string(slr.Code())
	default:
		out.Reason = fc.Reason
		out.Error = fc.Err
	}
	return out
}

func newClassifyCmd() *cobra.Command {
	var (
		fold  bool
		trace bool
	)
	cmd := &cobra.Command{
		Use:   "classify [name...]",
		Short: "识别文件名（无参数时逐行读取 stdin），每个输入输出一行 JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.FromContext(cmd.Context(), "classify")
			enc := json.NewEncoder(cmd.OutOrStdout())
			opts := app.Options{Fold: fold}

			unmatched := 0
			handle := func(name string) error {
				if trace {
					_, steps := code.Trace(media.Basename(name))
					for _, st := range steps {
						logger.Debug().
							Str(log.FieldFile, name).
							Str(log.FieldRule, st.Rule).
							Str("before", st.Before).
							Str("after", st.After).
							Msg("rewrite")
					}
				}
				fc := app.ClassifyName(name, opts)
				if fc.Kind == domain.KindUnmatched {
					unmatched++
				}
				return enc.Encode(toLine(name, fc))
			}

			var err error
			if len(args) > 0 {
				for _, a := range args {
					if err = handle(a); err != nil {
						break
					}
				}
			} else {
				err = eachLine(cmd.InOrStdin(), handle)
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "classify 失败：%v\n", err)
				return &exitError{code: 1}
			}
			if unmatched > 0 {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fold, "fold-unicode", false, "识别前做 NFC + 全角折叠")
	cmd.Flags().BoolVar(&trace, "trace", false, "以 debug 级别记录每条改写规则的前后变化")
	return cmd
}

// eachLine 逐行调用 fn，跳过空行（行首尾空白会被去掉）。
func eachLine(r io.Reader, fn func(string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return sc.Err()
}
