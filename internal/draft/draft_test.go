package draft

import (
	"reflect"
	"testing"
)

func TestNormalizeSanitizesText(t *testing.T) {
	p := Post{Text: `<p onclick="x">hi <b>there</b></p>`}.Normalize()
	if p.Text != "<p>hi <strong>there</strong></p>" {
		t.Errorf("got %q", p.Text)
	}
}

func TestNormalizePoll(t *testing.T) {
	p := Post{Poll: &Poll{Options: []string{" a ", "", "b", "c", "d", "e"}, DurationMinutes: 60}}.Normalize()
	if p.Poll == nil {
		t.Fatal("poll dropped")
	}
	if want := []string{"a", "b", "c", "d"}; !reflect.DeepEqual(p.Poll.Options, want) {
		t.Errorf("got %v, want %v", p.Poll.Options, want)
	}
}

func TestNormalizeDropsDegeneratePoll(t *testing.T) {
	p := Post{Poll: &Poll{Options: []string{"only", "  "}}}.Normalize()
	if p.Poll != nil {
		t.Errorf("single-option poll kept: %+v", p.Poll)
	}
}

func TestDraftNormalizeEnsuresOnePost(t *testing.T) {
	d := Draft{ID: "x"}.Normalize()
	if len(d.Posts) != 1 || d.Posts[0].Text != "<p></p>" {
		t.Errorf("got %+v", d.Posts)
	}
}

func TestPlainText(t *testing.T) {
	p := Post{Text: "<h1>T</h1><p>body</p>"}
	if got := p.PlainText(); got != "T\nbody" {
		t.Errorf("got %q", got)
	}
}
