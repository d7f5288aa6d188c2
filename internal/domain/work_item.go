package domain

// WorkItem 是按 CODE 聚合后的 JAV 作品（多个 part 合并到同一条）。
// 为了数据局部性，WorkItem 只保存文件下标（指向 []VideoFile），Infos 与 FileIdx 一一对应。
type WorkItem struct {
	Code    Code
	FileIdx []int
	Infos   []JavInfo
}

// SlrItem 是一个 SLR 下载文件（SLR 文件不做多 part 合并）。
type SlrItem struct {
	FileIdx int
	Info    SlrInfo
}
