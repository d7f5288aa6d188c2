// Package watch 监听库目录，新出现的视频文件即时分类。
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/John-Robertt/vroom/internal/app"
	"github.com/John-Robertt/vroom/internal/media"
	"github.com/John-Robertt/vroom/internal/scan"
)

// Event 是一次分类结果。
type Event struct {
	Path    string
	RelPath string
	Class   app.FileClass
}

type Options struct {
	ExcludeDirs []string
	Extensions  []string
	Fold        bool
	Logger      zerolog.Logger
	// Ready 在初始目录树全部加入监听后调用一次（可为 nil）。
	Ready func()
}

// Run 阻塞直到 ctx 结束。
//
// 规则：
// - 递归监听 root 下的所有目录（排除规则与 scan 一致）
// - 新建目录会被加入监听，其中已有的视频文件也会被分类
// - 同一路径只上报一次；删除/改名后再次出现会重新上报
// - 启动前已存在的文件不上报（那是 scan 的职责）
func Run(ctx context.Context, root string, opts Options, handle func(Event)) error {
	root = filepath.Clean(root)
	videoRE, err := regexp.Compile("(?i)" + media.ExtPattern(opts.Extensions...))
	if err != nil {
		return fmt.Errorf("扩展名规则非法：%w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()

	wt := &watcher{
		root:    root,
		opts:    opts,
		videoRE: videoRE,
		fsw:     w,
		seen:    make(map[string]struct{}, 64),
		handle:  handle,
	}
	if err := wt.addTree(root, false); err != nil {
		return err
	}
	opts.Logger.Info().Str("path", root).Int("dirs", len(w.WatchList())).Msg("watching")
	if opts.Ready != nil {
		opts.Ready()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			wt.onEvent(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			opts.Logger.Warn().Err(err).Msg("fsnotify watcher error")
		}
	}
}

type watcher struct {
	root    string
	opts    Options
	videoRE *regexp.Regexp
	fsw     *fsnotify.Watcher
	seen    map[string]struct{}
	handle  func(Event)
}

func (wt *watcher) onEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if scan.IsExcluded(wt.root, path, wt.opts.ExcludeDirs) {
		return
	}

	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		delete(wt.seen, path)
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}

	if isDir(path) {
		if ev.Has(fsnotify.Create) {
			if err := wt.addTree(path, true); err != nil {
				wt.opts.Logger.Warn().Err(err).Str("path", path).Msg("watch subdirectory failed")
			}
		}
		return
	}
	wt.emit(path)
}

// addTree 把 dir 及其子目录加入监听；emitFiles 为 true 时顺带分类其中的视频文件。
func (wt *watcher) addTree(dir string, emitFiles bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if scan.IsExcluded(wt.root, path, wt.opts.ExcludeDirs) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := wt.fsw.Add(path); err != nil {
				return fmt.Errorf("watch directory %s: %w", path, err)
			}
			return nil
		}
		if emitFiles {
			wt.emit(path)
		}
		return nil
	})
}

func (wt *watcher) emit(path string) {
	name := filepath.Base(path)
	if !wt.videoRE.MatchString(name) {
		return
	}
	if _, ok := wt.seen[path]; ok {
		return
	}
	wt.seen[path] = struct{}{}

	rel, err := filepath.Rel(wt.root, path)
	if err != nil {
		rel = path
	}
	ev := Event{
		Path:    path,
		RelPath: rel,
		Class:   app.ClassifyName(name, app.Options{Fold: wt.opts.Fold}),
	}
	wt.opts.Logger.Debug().Str("file", rel).Str("kind", ev.Class.Kind).Msg("classified")
	if wt.handle != nil {
		wt.handle(ev)
	}
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
