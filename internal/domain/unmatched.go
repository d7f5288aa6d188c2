package domain

const (
	UnmatchedNoMatch = "no_match"
	UnmatchedInvalid = "invalid"
)

// Unmatched 描述既不是 JAV 也不是 SLR 的输入文件。
type Unmatched struct {
	File VideoFile
	Kind string // "no_match" | "invalid"
	Err  string // 仅 invalid 时非空
}
