package domain

// VideoFile 描述一次扫描得到的视频文件（只做 stat，不读内容）。
//
// 不变量（实现必须遵守）：
// - AbsPath 必须是 clean + absolute
// - Name 是带扩展名的原始文件名，分类器只看它
type VideoFile struct {
	AbsPath string
	RelPath string
	Name    string // "WVR-1001-2.mp4"
	Ext     string // ".mp4"（小写）
	Size    int64
	ModUnix int64
}
