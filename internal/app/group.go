package app

import (
	"sort"

	"github.com/John-Robertt/vroom/internal/code"
	"github.com/John-Robertt/vroom/internal/domain"
	"github.com/John-Robertt/vroom/internal/media"
	"github.com/John-Robertt/vroom/internal/slr"
)

// Options 控制单个文件的分类行为。
type Options struct {
	// Fold 为 true 时，分类前先做 NFC + 全角折叠（media.Fold）。
	Fold bool
}

// FileClass 是单个文件的分类结果，Kind 取 domain.KindJAV / KindSLR / KindUnmatched。
type FileClass struct {
	Kind string
	Jav  domain.JavInfo
	Slr  domain.SlrInfo
	// 仅 Kind=unmatched：domain.UnmatchedNoMatch | domain.UnmatchedInvalid
	Reason string
	Err    string
}

// Grouped 是 Group 的输出：JAV 按 CODE 聚合，SLR 逐文件，其余进入 Unmatched。
type Grouped struct {
	Items     []domain.WorkItem
	Slr       []domain.SlrItem
	Unmatched []domain.Unmatched
}

// ClassifyName 只看文件名（可带路径）：先判 SLR，再判 JAV。
// 两个分类器互斥，顺序只影响 invalid 的归类。
func ClassifyName(name string, opts Options) FileClass {
	if opts.Fold {
		name = media.Fold(name)
	}
	if info, ok := slr.Parse(name); ok {
		return FileClass{Kind: domain.KindSLR, Slr: info}
	}
	info, ok, err := code.Parse(name)
	if err != nil {
		return FileClass{Kind: domain.KindUnmatched, Reason: domain.UnmatchedInvalid, Err: err.Error()}
	}
	if !ok {
		return FileClass{Kind: domain.KindUnmatched, Reason: domain.UnmatchedNoMatch}
	}
	return FileClass{Kind: domain.KindJAV, Jav: info}
}

// Group 把逐文件的分类结果聚合起来（classes 与 files 下标一一对应）。
//
// - items 稳定排序：按 Code 字典序
// - item 内 FileIdx 稳定排序：按 RelPath 字典序（Infos 同步重排）
// - Slr / Unmatched 保持 files 的顺序
func Group(files []domain.VideoFile, classes []FileClass) Grouped {
	index := make(map[domain.Code]int, 128)
	g := Grouped{
		Items:     make([]domain.WorkItem, 0, 128),
		Slr:       make([]domain.SlrItem, 0, 16),
		Unmatched: make([]domain.Unmatched, 0, 32),
	}

	for i := range files {
		fc := classes[i]
		switch fc.Kind {
		case domain.KindSLR:
			g.Slr = append(g.Slr, domain.SlrItem{FileIdx: i, Info: fc.Slr})
			continue
		case domain.KindJAV:
		default:
			g.Unmatched = append(g.Unmatched, domain.Unmatched{File: files[i], Kind: fc.Reason, Err: fc.Err})
			continue
		}

		c := fc.Jav.Code()
		if idx, ok := index[c]; ok {
			g.Items[idx].FileIdx = append(g.Items[idx].FileIdx, i)
			g.Items[idx].Infos = append(g.Items[idx].Infos, fc.Jav)
			continue
		}
		index[c] = len(g.Items)
		g.Items = append(g.Items, domain.WorkItem{
			Code:    c,
			FileIdx: []int{i},
			Infos:   []domain.JavInfo{fc.Jav},
		})
	}

	sort.Slice(g.Items, func(i, j int) bool { return string(g.Items[i].Code) < string(g.Items[j].Code) })
	for i := range g.Items {
		sort.Sort(byRelPath{item: &g.Items[i], files: files})
	}
	return g
}

// Classify 顺序分类 files 并聚合；并发版本见 run.Execute。
func Classify(files []domain.VideoFile, opts Options) Grouped {
	classes := make([]FileClass, len(files))
	for i := range files {
		classes[i] = ClassifyName(files[i].Name, opts)
	}
	return Group(files, classes)
}

type byRelPath struct {
	item  *domain.WorkItem
	files []domain.VideoFile
}

func (s byRelPath) Len() int { return len(s.item.FileIdx) }

func (s byRelPath) Less(a, b int) bool {
	return s.files[s.item.FileIdx[a]].RelPath < s.files[s.item.FileIdx[b]].RelPath
}

func (s byRelPath) Swap(a, b int) {
	s.item.FileIdx[a], s.item.FileIdx[b] = s.item.FileIdx[b], s.item.FileIdx[a]
	s.item.Infos[a], s.item.Infos[b] = s.item.Infos[b], s.item.Infos[a]
}
