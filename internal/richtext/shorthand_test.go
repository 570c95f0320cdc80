package richtext

import (
	"reflect"
	"testing"
)

func TestParseShorthandBlocks(t *testing.T) {
	doc := ParseShorthand("# Title\n## Sub\n### Minor\n> quoted\n- one\n* two\nplain")
	want := []BlockType{BlockH1, BlockH2, BlockH3, BlockQuote, BlockList, BlockList, BlockParagraph}
	if len(doc.Blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d", len(doc.Blocks), len(want))
	}
	for i, typ := range want {
		if doc.Blocks[i].Type != typ {
			t.Errorf("block %d: got %q, want %q", i, doc.Blocks[i].Type, typ)
		}
	}
	if got := doc.Blocks[0].text(); got != "Title" {
		t.Errorf("heading text: got %q", got)
	}
}

func TestParseShorthandInlineStyles(t *testing.T) {
	tests := []struct {
		input string
		want  []Chunk
	}{
		{"plain", []Chunk{{Text: "plain"}}},
		{"**bold**", []Chunk{{Text: "bold", Bold: true}}},
		{"*italic*", []Chunk{{Text: "italic", Italic: true}}},
		{"***both***", []Chunk{{Text: "both", Bold: true, Italic: true}}},
		{"a **b** c", []Chunk{{Text: "a "}, {Text: "b", Bold: true}, {Text: " c"}}},
		{"**b *and i* again**", []Chunk{
			{Text: "b ", Bold: true},
			{Text: "and i", Bold: true, Italic: true},
			{Text: " again", Bold: true},
		}},
	}
	for _, tt := range tests {
		doc := ParseShorthand(tt.input)
		if len(doc.Blocks) != 1 {
			t.Fatalf("%q: got %d blocks", tt.input, len(doc.Blocks))
		}
		if got := doc.Blocks[0].Chunks; !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%q: got %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestParseShorthandBlankLine(t *testing.T) {
	doc := ParseShorthand("a\n\nb")
	if len(doc.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(doc.Blocks))
	}
	if doc.Blocks[1].Type != BlockEmpty {
		t.Errorf("middle block: got %q, want empty", doc.Blocks[1].Type)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n"} {
		doc := Parse(input)
		if len(doc.Blocks) != 1 || doc.Blocks[0].Type != BlockEmpty {
			t.Errorf("%q: got %+v, want single empty block", input, doc.Blocks)
		}
		if len(doc.Blocks[0].Chunks) != 1 {
			t.Errorf("%q: empty block must carry one empty chunk", input)
		}
	}
}

func TestParseDispatch(t *testing.T) {
	if doc := Parse("<p>hi</p>"); doc.Blocks[0].Type != BlockParagraph || doc.Blocks[0].text() != "hi" {
		t.Errorf("markup input not routed to markup parser: %+v", doc.Blocks)
	}
	if doc := Parse("# hi"); doc.Blocks[0].Type != BlockH1 {
		t.Errorf("shorthand input not routed to shorthand parser: %+v", doc.Blocks)
	}
}
