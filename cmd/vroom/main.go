package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/vroom/internal/log"
)

// 版本信息（构建时通过 -ldflags 注入）。
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// exitError 让子命令携带退出码返回，而不在命令内部直接 os.Exit。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

type rootFlags struct {
	logLevel string
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute 运行一次 CLI 并返回退出码（0=成功，1=有失败/未识别，2=参数错误）。
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// 其余错误来自 cobra 的参数校验（未知命令、参数个数不符等）。
	fmt.Fprintf(stderr, "参数错误：%v\n", err)
	return 2
}

func newRootCmd() *cobra.Command {
	var rf rootFlags

	root := &cobra.Command{
		Use:   "vroom",
		Short: "识别 VR 视频文件名：JAV 风格（WVR1-001）与 SLR 下载风格",
		Long: `vroom 只看文件名，不读取视频内容。

JAV 风格：STUDIO[-_ .]ID[-_ .]PART，例如 WVR1-001-2.mp4、sivr00386_1_8k.mp4
SLR 风格：SITE_STUDIO_TITLE_RES_ID_PROJECTION.mp4，例如 SLR_SLR Originals_Vegas Night_1920p_12345_FISHEYE190.mp4`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			errOut := cmd.ErrOrStderr()
			logger := log.New(log.Config{
				Level:   rf.logLevel,
				Output:  errOut,
				Console: isTTY(errOut),
			})
			cmd.SetContext(log.IntoContext(cmd.Context(), logger))
		},
	}
	root.PersistentFlags().StringVar(&rf.logLevel, "log-level", "", "日志级别：debug|info|warn|error（默认读 LOG_LEVEL，最终 info）")

	root.AddCommand(
		newClassifyCmd(),
		newSlrPatternCmd(),
		newExtPatternCmd(),
		newScanCmd(&rf),
		newListingCmd(),
		newWatchCmd(&rf),
		newVersionCmd(),
	)

	// 参数错误统一走 exit 2，并打印用法。
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintf(cmd.ErrOrStderr(), "参数错误：%v\n\n%s", err, cmd.UsageString())
		return &exitError{code: 2}
	})
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "vroom %s\n", version)
			fmt.Fprintf(w, "  commit: %s\n", commit)
			fmt.Fprintf(w, "  built:  %s\n", buildTime)
		},
	}
}

// isTTY 只对 *os.File 做判断；测试中的 buffer 一律视为非 TTY。
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
