package lint

import "testing"

func TestFix_CJKLatinSpacing(t *testing.T) {
	got := Fix("我爱Python编程", "R001", nil)
	want := "我爱 Python 编程"
	if got != want {
		t.Errorf("Fix(R001) = %q, want %q", got, want)
	}
}

func TestFix_CJKLatinSpacing_WhitelistProtected(t *testing.T) {
	// "iPad" is protected: the fix must not split or respace it, and
	// restoration must be verbatim however many times it occurs.
	got := Fix("买了iPad还想再买iPad", "R001", []string{"iPad"})
	want := "买了iPad还想再买iPad"
	if got != want {
		t.Errorf("Fix(R001) = %q, want %q", got, want)
	}
}

func TestFix_CJKDigitSpacing(t *testing.T) {
	got := Fix("一共3个苹果", "R002", nil)
	want := "一共 3 个苹果"
	if got != want {
		t.Errorf("Fix(R002) = %q, want %q", got, want)
	}
}

func TestFix_DigitUnit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"这是10GB的数据", "这是10 GB的数据"},
		{"型号是10XYZ的设备", "型号是10XYZ的设备"},
		{"延迟是30ms左右", "延迟是30 ms左右"},
	}
	for _, tt := range tests {
		if got := Fix(tt.in, "R003", nil); got != tt.want {
			t.Errorf("Fix(R003, %q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFix_PunctSpacing(t *testing.T) {
	got := Fix("你好 ，世界（ 真的）", "R004", nil)
	want := "你好，世界（真的）"
	if got != want {
		t.Errorf("Fix(R004) = %q, want %q", got, want)
	}
}

func TestFix_Ellipsis(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"等等......", "等等……"},
		{"等等......然后", "等等…… 然后"},
		{"等等。。。", "等等……"},
		{"等等………………", "等等……"},
	}
	for _, tt := range tests {
		if got := Fix(tt.in, "R005", nil); got != tt.want {
			t.Errorf("Fix(R005, %q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFix_Dash(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"前面--后面", "前面 —— 后面"},
		{"前面——后面", "前面 —— 后面"},
		{"前面 ——后面", "前面 —— 后面"},
	}
	for _, tt := range tests {
		if got := Fix(tt.in, "R006", nil); got != tt.want {
			t.Errorf("Fix(R006, %q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFix_FullWidthDigits(t *testing.T) {
	got := Fix("价格是１２３元", "R007", nil)
	want := "价格是123元"
	if got != want {
		t.Errorf("Fix(R007) = %q, want %q", got, want)
	}
}

func TestFix_UnknownRuleIsNoop(t *testing.T) {
	in := "任意text"
	if got := Fix(in, "R999", nil); got != in {
		t.Errorf("Fix(R999) = %q, want input unchanged", got)
	}
	// Rules without a defined fix are also no-ops.
	if got := Fix(in, "R008", nil); got != in {
		t.Errorf("Fix(R008) = %q, want input unchanged", got)
	}
}

// Every autofixable rule must be idempotent: fix(fix(x)) == fix(x).
func TestFix_Idempotence(t *testing.T) {
	inputs := []string{
		"我爱Python编程",
		"一共3个苹果和2只猫",
		"这是10GB的数据，等了3min",
		"你好 ，世界（ 真的）",
		"等等......然后呢。。。",
		"前面--后面——中间 ——尾部",
		"价格是１２３元",
		"混合文本mixed with토큰and符号......--１２３",
	}
	whitelist := BaseWhitelist()

	for _, rule := range Catalog() {
		if !rule.Autofix {
			continue
		}
		for _, in := range inputs {
			once := Fix(in, rule.ID, whitelist)
			twice := Fix(once, rule.ID, whitelist)
			if once != twice {
				t.Errorf("%s not idempotent on %q: first %q, second %q", rule.ID, in, once, twice)
			}
		}
	}
}

func TestFixAll_CatalogOrder(t *testing.T) {
	// R001 and R002 both fire; later fixes see earlier output.
	state := DefaultState()
	got := FixAll("我有2台Mac电脑", state, nil)
	want := "我有 2 台 Mac 电脑"
	if got != want {
		t.Errorf("FixAll = %q, want %q", got, want)
	}
}

func TestFixAll_RespectsRuleState(t *testing.T) {
	state := enabledOnly("R002")
	got := FixAll("我有2台Mac电脑", state, nil)
	want := "我有 2 台Mac电脑"
	if got != want {
		t.Errorf("FixAll = %q, want %q", got, want)
	}
}

func TestProtectTerms_DelimiterCollision(t *testing.T) {
	// Input already containing the delimiter byte must still round-trip.
	in := "前\x1f缀iPad后缀"
	masked, restore := protectTerms(in, []string{"iPad"})
	if masked == in {
		t.Fatal("expected masking to change the text")
	}
	if got := restore(masked); got != in {
		t.Errorf("restore = %q, want %q", got, in)
	}
}
