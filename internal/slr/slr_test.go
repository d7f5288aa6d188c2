package slr

import (
	"errors"
	"math"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/John-Robertt/vroom/internal/domain"
)

func TestPattern_Default(t *testing.T) {
	got, err := Pattern(PatternOptions{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := `^(SLR|DeoVR|JillVR)_(.+?)_(.+)_(original|\d+p)_(\d+)_(LR_180|TB_360|FISHEYE190_alpha|FISHEYE190|FISHEYE|MKX200)(\.fix|\.mp4)?\.mp4$`
	if got != want {
		t.Fatalf("pattern 不符合预期：\n got=%s\nwant=%s", got, want)
	}
}

func TestPattern_InvalidPrefix(t *testing.T) {
	for _, p := range []string{"$", "//", " ", "^/"} {
		_, err := Pattern(PatternOptions{Prefix: p})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("prefix=%q：期望 ErrInvalidArgument，实际 %v", p, err)
		}
	}
}

func TestPattern_PathPrefix(t *testing.T) {
	re, err := Compile(PatternOptions{Prefix: "/"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !re.MatchString("/vr/slr/SLR_Studio_Title_1080p_1_LR_180.mp4") {
		t.Fatalf("期望匹配带目录的路径")
	}
	if re.MatchString("SLR_Studio_Title_1080p_1_LR_180.mp4") {
		t.Fatalf("prefix=/ 不应匹配裸文件名")
	}
}

func TestPattern_ShortAndOverrides(t *testing.T) {
	re, err := Compile(PatternOptions{Short: true})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	m := re.FindStringSubmatch("SLR_Studio_Title.mp4")
	if m == nil {
		t.Fatalf("short pattern 应匹配 SLR_Studio_Title.mp4")
	}
	if m[1] != "SLR" || m[2] != "Studio" || m[3] != "Title" {
		t.Fatalf("short pattern 捕获不正确：%q", m)
	}

	re, err = Compile(PatternOptions{Site: "SLR", Studio: regexp.QuoteMeta("VRKM")})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !re.MatchString("SLR_VRKM_Title_1080p_1_LR_180.mp4") {
		t.Fatalf("覆盖 site/studio 后应匹配")
	}
	if re.MatchString("DeoVR_VRKM_Title_1080p_1_LR_180.mp4") {
		t.Fatalf("覆盖 site 后不应匹配 DeoVR")
	}
	if re.MatchString("SLR_Other_Title_1080p_1_LR_180.mp4") {
		t.Fatalf("覆盖 studio 后不应匹配其它 studio")
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want domain.SlrInfo
	}{
		{
			in:   "SLR_StudioName_Title_1080p_12345_LR_180.mp4",
			want: domain.SlrInfo{Site: "SLR", Studio: "StudioName", Title: "Title", Resolution: "1080p", SlrID: 12345, Projection: "LR_180"},
		},
		{
			in:   "/example/SLR_StudioName_Title_Original_1080p_12345_LR_180.mp4",
			want: domain.SlrInfo{Site: "SLR", Studio: "StudioName", Title: "Title_Original", Resolution: "1080p", SlrID: 12345, Projection: "LR_180"},
		},
		{
			in:   `D:\VR\DeoVR_Studio_Some Title_original_00777_FISHEYE190_alpha.mp4`,
			want: domain.SlrInfo{Site: "DeoVR", Studio: "Studio", Title: "Some Title", Resolution: "original", SlrID: 777, Projection: "FISHEYE190"},
		},
		{
			in:   "JillVR_X_Y_2160p_5_TB_360.fix.mp4",
			want: domain.SlrInfo{Site: "JillVR", Studio: "X", Title: "Y", Resolution: "2160p", SlrID: 5, Projection: "TB_360"},
		},
		{
			in:   "slr_a_b_1080P_1_mkx200.MP4",
			want: domain.SlrInfo{Site: "slr", Studio: "a", Title: "b", Resolution: "1080P", SlrID: 1, Projection: "mkx200"},
		},
	}
	for _, c := range cases {
		got, ok := Parse(c.in)
		if !ok {
			t.Fatalf("%q：期望匹配", c.in)
		}
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Fatalf("%q 解析结果不符 (-want +got):\n%s", c.in, diff)
		}
		if !Is(c.in) {
			t.Fatalf("%q：Is 应为 true", c.in)
		}
	}
}

func TestParse_NoMatch(t *testing.T) {
	for _, in := range []string{
		"SLR-AsianSexVR-Title-1920p-48493-LR-180.mp4",
		"SLR_Studio_Title_1080p_12345_LR_180.mkv",
		"SLR_Studio_Title_1080p_12345_SBS.mp4",
		"CBIKMV-068.mp4",
		"TMAVR-200-1.SLR_TMAVR_Filename Part 1_2160p_47574_LR_180.mp4",
		"",
	} {
		if _, ok := Parse(in); ok {
			t.Fatalf("%q：不期望匹配", in)
		}
		if Is(in) {
			t.Fatalf("%q：Is 应为 false", in)
		}
	}
}

func TestParse_IDOverflowStillMatches(t *testing.T) {
	in := "DeoVR_Studio_My ABCD-123 Title_1080p_99999999999999999999_LR_180.mp4"
	got, ok := Parse(in)
	if !ok {
		t.Fatalf("超出 int64 的 id 仍应识别为 SLR")
	}
	if got.SlrID != math.MaxInt64 || got.RawID != "99999999999999999999" {
		t.Fatalf("期望 SlrID 饱和且 RawID 保留原始数字，实际 %+v", got)
	}
	if c := got.Code(); c != "DEOVR-99999999999999999999" {
		t.Fatalf("期望 code DEOVR-99999999999999999999，实际 %q", c)
	}
	if !Matches(in) || !Is(in) {
		t.Fatalf("Matches/Is 应为 true")
	}

	small, _ := Parse("SLR_a_b_1080p_12345_LR_180.mp4")
	if small.RawID != "" {
		t.Fatalf("未溢出时 RawID 应为空，实际 %q", small.RawID)
	}
}

func TestParse_Idempotent(t *testing.T) {
	in := "SLR_StudioName_Title_1080p_12345_LR_180.mp4"
	a, _ := Parse(in)
	b, _ := Parse(in)
	if a != b {
		t.Fatalf("两次解析结果不一致：%+v vs %+v", a, b)
	}
}
