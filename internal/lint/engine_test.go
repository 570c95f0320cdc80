package lint

import "testing"

func enabledOnly(ids ...string) map[string]bool {
	state := make(map[string]bool, len(ids))
	for _, id := range ids {
		state[id] = true
	}
	return state
}

func TestLint_CJKLatinBoundaries(t *testing.T) {
	issues := Lint("我爱Python编程", enabledOnly("R001"), nil)

	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2: %+v", len(issues), issues)
	}
	if issues[0].Excerpt != "爱P" {
		t.Errorf("issues[0].Excerpt = %q, want %q", issues[0].Excerpt, "爱P")
	}
	if issues[1].Excerpt != "n编" {
		t.Errorf("issues[1].Excerpt = %q, want %q", issues[1].Excerpt, "n编")
	}
	// Rune offsets, not byte offsets.
	if issues[0].Start != 1 || issues[0].End != 3 {
		t.Errorf("issues[0] span = [%d,%d), want [1,3)", issues[0].Start, issues[0].End)
	}
	if issues[1].Start != 7 || issues[1].End != 9 {
		t.Errorf("issues[1] span = [%d,%d), want [7,9)", issues[1].Start, issues[1].End)
	}
}

func TestLint_EmptyInput(t *testing.T) {
	if issues := Lint("", DefaultState(), nil); len(issues) != 0 {
		t.Errorf("got %d issues for empty input, want 0", len(issues))
	}
}

func TestLint_WhitelistSuppression(t *testing.T) {
	text := "我在用iPad写作"

	issues := Lint(text, enabledOnly("R001"), nil)
	if len(issues) == 0 {
		t.Fatal("expected issues without whitelist")
	}

	// Fully whitelisting the whole mixed phrase suppresses every match
	// contained in it.
	issues = Lint(text, enabledOnly("R001"), []string{"我在用iPad写作"})
	if len(issues) != 0 {
		t.Errorf("got %d issues with whitelist, want 0: %+v", len(issues), issues)
	}
}

func TestLint_NoIssueOverlapsIgnoredRange(t *testing.T) {
	text := "今天的iOS更新和iPhone发布，用iPad看了3h直播"
	whitelist := BaseWhitelist()
	spans := TermSpans(text, whitelist)

	for _, issue := range Lint(text, DefaultState(), whitelist) {
		if ignored(spans, issue.Start, issue.End) {
			t.Errorf("issue %s is contained in an ignored range", issue.ID)
		}
	}
}

func TestLint_OrderingNonDecreasing(t *testing.T) {
	text := "价格是１００元......真的吗?我用javascript写了10kb的脚本"
	issues := Lint(text, DefaultState(), nil)

	for i := 1; i < len(issues); i++ {
		if issues[i].Start < issues[i-1].Start {
			t.Fatalf("issues out of order at %d: %d < %d", i, issues[i].Start, issues[i-1].Start)
		}
	}
}

func TestLint_UnitVocabulary(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"recognized unit", "这是10GB的数据", 1},
		{"unrecognized token", "型号是10XYZ的设备", 0},
		{"case-insensitive unit", "等了3Min才到", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Lint(tt.text, enabledOnly("R003"), nil)
			if len(issues) != tt.want {
				t.Errorf("got %d issues, want %d: %+v", len(issues), tt.want, issues)
			}
		})
	}
}

func TestLint_ProperNounSuggestion(t *testing.T) {
	issues := Lint("I pushed it to github yesterday", enabledOnly("R012"), nil)

	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}
	if issues[0].Suggestion != "GitHub" {
		t.Errorf("Suggestion = %q, want %q", issues[0].Suggestion, "GitHub")
	}
	if issues[0].Excerpt != "github" {
		t.Errorf("Excerpt = %q, want %q", issues[0].Excerpt, "github")
	}
}

func TestLint_CanonicalCasingDoesNotFire(t *testing.T) {
	if issues := Lint("I pushed it to GitHub yesterday", enabledOnly("R012"), nil); len(issues) != 0 {
		t.Errorf("got %d issues for canonical casing, want 0: %+v", len(issues), issues)
	}
}

func TestLint_StructuralRules(t *testing.T) {
	tests := []struct {
		name   string
		ruleID string
		text   string
		want   int
	}{
		{"repeated punctuation", "R008", "真的吗！！", 1},
		{"no repeat", "R008", "真的吗！", 0},
		{"mixed punctuation", "R009", "你好,世界", 2},
		{"curly quotes", "R010", "他说“你好”", 2},
		{"emotion run", "R011", "太棒了！！！", 1},
		{"full-width digits", "R007", "共１２个", 2},
		{"dash double hyphen", "R006", "前面--后面", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Lint(tt.text, enabledOnly(tt.ruleID), nil)
			if len(issues) != tt.want {
				t.Errorf("got %d issues, want %d: %+v", len(issues), tt.want, issues)
			}
		})
	}
}

func TestDefaultState_CoversCatalog(t *testing.T) {
	state := DefaultState()
	for _, r := range Catalog() {
		if _, ok := state[r.ID]; !ok {
			t.Errorf("DefaultState missing entry for %s", r.ID)
		}
	}
	if state["R010"] {
		t.Error("R010 should be disabled by default")
	}
	if !state["R001"] {
		t.Error("R001 should be enabled by default")
	}
}

func TestRuleByID(t *testing.T) {
	if r := RuleByID("R005"); r == nil || r.Label != "Ellipsis" {
		t.Errorf("RuleByID(R005) = %+v", r)
	}
	if r := RuleByID("R999"); r != nil {
		t.Errorf("RuleByID(R999) = %+v, want nil", r)
	}
}
