package media

import (
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Fold 把文件名规整为 NFC，并把全角字符折叠为半角（"ＷＶＲ－００１" -> "WVR-001"）。
//
// 分类器本身从不调用 Fold；只有调用方显式开启时才使用（macOS 上的 NFD 文件名、
// 某些下载工具产出的全角番号）。
func Fold(name string) string {
	return width.Fold.String(norm.NFC.String(name))
}
