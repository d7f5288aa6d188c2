package code

import (
	"regexp"

	"github.com/John-Robertt/vroom/internal/media"
)

// Rule 是改写管线中的一步：把 Pattern 的所有匹配替换为 Repl（支持 ${1} 引用）。
//
// 规则按 rewriteRules 的顺序依次执行，后面的规则假定前面的规则已经执行过。
// 尤其是 WVR 系列：越具体的规则越靠前，较通用的规则不会再次改写已规范化的输出。
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Repl    string
}

func rule(name, pattern, repl string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile("(?i)" + pattern), Repl: repl}
}

var rewriteRules = []Rule{
	rule("strip-180-lr", `\.180\.LR\b`, ""),

	// 深度估计工具（Depth Anything 等）产出的文件名。
	rule("strip-depth-scene", `^scene-\d+\.`, ""),
	rule("strip-depth-params", `\bdiv-\d+\.\d+ con-\d+\.\d+ fg-\d+\.\d+ ipd-\d+\b`, ""),

	// WVR1
	rule("wvr1-dash-1-zeros", `^WVR-10*?(\D)`, "WVR1${1}"),
	rule("wvr1-dash-1", `^WVR-1(\d)`, "WVR1${1}"),
	rule("wvr1-dash-11-dash", `^WVR-11-(\d\d\d)`, "WVR1-${1}"),
	rule("wvr1-dash-2-dash", `^WVR-2-(\d\d\d)`, "WVR1-${1}"),
	rule("wvr1-dash-101", `^WVR-101(\d\d\d)`, "WVR1${1}"),
	rule("wvr1-dash-11", `^WVR-11(\d\d\d)`, "WVR1${1}"),
	rule("wvr1-dash-2", `^WVR-2(\d)`, "WVR1${1}"),

	// WVR6
	rule("wvr6-d-dash", `^WVR6D-`, "WVR6-"),
	rule("wvr6-dash-d", `^WVR6-D(\d)`, "WVR6-${1}"),
	rule("wvr6-d", `^WVR6D(\d\d\d)`, "WVR6${1}"),

	// WVR8
	rule("wvr8-short-id", `^WVR8(\d\d\w)\b`, "WVR80${1}"),
	rule("wvr8-dash", `^WVR-0*8`, "WVR8"),

	// WVR9
	rule("wvr9-dash", `^WVR-9(\d\d\d)`, "WVR9${1}"),
	rule("wvr9-cd-bare", `^WVR9[cd]\b`, "WVR9"),
	rule("wvr9-cd", `^WVR9[cd](\d)`, "WVR9${1}"),
	rule("wvr9-dash-91", `^WVR-91(\d\d\d)`, "WVR9${1}"),

	rule("3dsvr", `^3DSVR(\b|\d)`, "DSVR${1}"),

	rule("strip-extension", media.ExtPattern(), ""),
	// [-_\x08]：保留历史实现里字符类中的 \b（退格符）语义。
	rule("strip-mkx199", `[-_\x08]mkx199`, ""),
	rule("strip-mkx219", `[-_\x08]mkx219`, ""),
	rule("strip-resolution", `[-_]*(299|320|640|720|\d\d\d\d)p`, ""),
	rule("strip-179-sbs", `179-SBS\b`, ""),
	rule("strip-179-lr", `179_LR\b`, ""),
	rule("strip-slr-download-id", `_\d+-SLR\b`, ""),
}

// Rules 返回改写规则的副本（按执行顺序）。
func Rules() []Rule {
	return append([]Rule(nil), rewriteRules...)
}

// Step 记录一次实际改变了文件名的规则。
type Step struct {
	Rule   string
	Before string
	After  string
}

// Rewrite 按顺序执行全部改写规则。
func Rewrite(name string) string {
	for _, r := range rewriteRules {
		name = r.Pattern.ReplaceAllString(name, r.Repl)
	}
	return name
}

// Trace 与 Rewrite 相同，但返回每个生效规则的前后对比，用于排查规则顺序问题。
func Trace(name string) (string, []Step) {
	var steps []Step
	for _, r := range rewriteRules {
		after := r.Pattern.ReplaceAllString(name, r.Repl)
		if after != name {
			steps = append(steps, Step{Rule: r.Name, Before: name, After: after})
		}
		name = after
	}
	return name, steps
}
