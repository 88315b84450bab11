package typeset

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dshills/textweave/attachment"
	"github.com/dshills/textweave/core"
	"github.com/dshills/textweave/shaping"
)

// cellWidth 10 makes widths easy to reason about: one ASCII char = 10.
func newTestTypesetter() *Typesetter {
	return New(shaping.NewMonospace(10))
}

type fakeAttachment struct {
	id    uuid.UUID
	width float64
}

func (f fakeAttachment) Width() float64 { return f.width }
func (f fakeAttachment) ID() uuid.UUID  { return f.id }

func anchored(width float64, r core.Range) attachment.Anchored {
	return attachment.Anchored{
		Attachment: fakeAttachment{id: uuid.New(), width: width},
		Range:      r,
	}
}

// checkContiguous verifies the fragment invariant: ranges concatenate to
// the line's full range with no gaps or overlaps.
func checkContiguous(t *testing.T, frags []*Fragment, lineRange core.Range) {
	t.Helper()
	if len(frags) == 0 {
		t.Fatal("no fragments produced")
	}
	pos := lineRange.Location
	for i, f := range frags {
		if f.DocumentRange.Location != pos {
			t.Errorf("fragment %d starts at %d, want %d", i, f.DocumentRange.Location, pos)
		}
		pos = f.DocumentRange.Max()
	}
	if pos != lineRange.Max() {
		t.Errorf("fragments end at %d, line ends at %d", pos, lineRange.Max())
	}
}

func TestLineEndingsSingleFragment(t *testing.T) {
	ts := newTestTypesetter()
	for _, ending := range []string{"\n", "\r", "\r\n"} {
		for _, strategy := range []BreakStrategy{BreakWord, BreakCharacter} {
			text := "testline" + ending
			frags := ts.Typeset(Context{
				Text:          text,
				DocumentRange: core.NewRange(0, len(text)),
				Strategy:      strategy,
			})
			if len(frags) != 1 {
				t.Errorf("%q strategy %d: %d fragments, want 1", text, strategy, len(frags))
			}
			checkContiguous(t, frags, core.NewRange(0, len(text)))
			if frags[0].Width != 80 {
				t.Errorf("%q: width = %f, want 80 (terminator is zero-width)", text, frags[0].Width)
			}
		}
	}
}

func TestEmptyLineProducesOneFragment(t *testing.T) {
	ts := newTestTypesetter()
	frags := ts.Typeset(Context{
		DocumentRange: core.NewRange(42, 0),
		MaxWidth:      100,
	})
	if len(frags) != 1 {
		t.Fatalf("%d fragments, want 1", len(frags))
	}
	f := frags[0]
	if f.Width != 0 {
		t.Errorf("width = %f, want 0", f.Width)
	}
	if f.Height != ts.Shaper().LineHeight() {
		t.Errorf("height = %f, want estimated %f", f.Height, ts.Shaper().LineHeight())
	}
	if f.DocumentRange != core.NewRange(42, 0) {
		t.Errorf("range = %v, want {42, 0}", f.DocumentRange)
	}
}

func TestCharacterBreak(t *testing.T) {
	ts := newTestTypesetter()
	text := "abcdefghij\n" // 10 cells wide plus terminator
	frags := ts.Typeset(Context{
		Text:          text,
		DocumentRange: core.NewRange(0, len(text)),
		MaxWidth:      40, // 4 chars per fragment
		Strategy:      BreakCharacter,
	})
	checkContiguous(t, frags, core.NewRange(0, len(text)))
	if len(frags) != 3 {
		t.Fatalf("%d fragments, want 3", len(frags))
	}
	if frags[0].DocumentRange.Length != 4 || frags[1].DocumentRange.Length != 4 {
		t.Errorf("fragment lengths %d, %d; want 4, 4",
			frags[0].DocumentRange.Length, frags[1].DocumentRange.Length)
	}
	if frags[0].Width != 40 {
		t.Errorf("fragment width = %f, want 40", frags[0].Width)
	}
}

func TestWordBreak(t *testing.T) {
	ts := newTestTypesetter()
	text := "hello world again\n"
	frags := ts.Typeset(Context{
		Text:          text,
		DocumentRange: core.NewRange(0, len(text)),
		MaxWidth:      140, // 14 cells; overflow lands inside "again"
		Strategy:      BreakWord,
	})
	checkContiguous(t, frags, core.NewRange(0, len(text)))
	if len(frags) != 2 {
		t.Fatalf("%d fragments, want 2", len(frags))
	}
	// The break backs up to the space before "again".
	if got := frags[0].DocumentRange.Length; got != len("hello world ") {
		t.Errorf("first fragment length = %d, want %d", got, len("hello world "))
	}
}

func TestWordBreakFallsBackWithoutBoundary(t *testing.T) {
	ts := newTestTypesetter()
	text := strings.Repeat("x", 30) + "\n"
	frags := ts.Typeset(Context{
		Text:          text,
		DocumentRange: core.NewRange(0, len(text)),
		MaxWidth:      100,
		Strategy:      BreakWord,
	})
	checkContiguous(t, frags, core.NewRange(0, len(text)))
	if len(frags) != 3 {
		t.Fatalf("%d fragments, want 3", len(frags))
	}
	if frags[0].DocumentRange.Length != 10 {
		t.Errorf("first fragment length = %d, want raw break at 10", frags[0].DocumentRange.Length)
	}
}

func TestCRLFNeverSplits(t *testing.T) {
	ts := newTestTypesetter()
	// Width forces the raw break exactly at the terminator.
	text := "abcd\r\n"
	frags := ts.Typeset(Context{
		Text:          text,
		DocumentRange: core.NewRange(0, len(text)),
		MaxWidth:      40,
		Strategy:      BreakCharacter,
	})
	checkContiguous(t, frags, core.NewRange(0, len(text)))
	for i, f := range frags {
		s := text[f.DocumentRange.Location:f.DocumentRange.Max()]
		if strings.HasSuffix(s, "\r") && strings.Contains(text[f.DocumentRange.Max():], "\n") {
			t.Errorf("fragment %d splits the CRLF pair: %q", i, s)
		}
	}
}

func TestWideRunes(t *testing.T) {
	ts := newTestTypesetter()
	text := "日本語テキスト\n" // seven double-width clusters
	frags := ts.Typeset(Context{
		Text:          text,
		DocumentRange: core.NewRange(0, len(text)),
		MaxWidth:      60, // 3 wide chars per fragment
		Strategy:      BreakCharacter,
	})
	checkContiguous(t, frags, core.NewRange(0, len(text)))
	if len(frags) != 3 {
		t.Fatalf("%d fragments, want 3", len(frags))
	}
	if frags[0].Width != 60 {
		t.Errorf("first fragment width = %f, want 60", frags[0].Width)
	}
}

func TestIdempotence(t *testing.T) {
	ts := newTestTypesetter()
	lctx := Context{
		Text:          "the quick brown fox jumps over the lazy dog\n",
		DocumentRange: core.NewRange(100, 44),
		MaxWidth:      150,
		Strategy:      BreakWord,
	}
	a := ts.Typeset(lctx)
	b := ts.Typeset(lctx)
	if len(a) != len(b) {
		t.Fatalf("fragment counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].DocumentRange != b[i].DocumentRange {
			t.Errorf("fragment %d ranges differ: %v vs %v", i, a[i].DocumentRange, b[i].DocumentRange)
		}
		if a[i].Width != b[i].Width {
			t.Errorf("fragment %d widths differ: %f vs %f", i, a[i].Width, b[i].Width)
		}
	}
}

func TestAttachmentInline(t *testing.T) {
	ts := newTestTypesetter()
	text := "ab#cd\n" // '#' stands in for the attachment's character
	frags := ts.Typeset(Context{
		Text:          text,
		DocumentRange: core.NewRange(0, len(text)),
		MaxWidth:      200,
		Attachments:   []attachment.Anchored{anchored(50, core.NewRange(2, 1))},
	})
	checkContiguous(t, frags, core.NewRange(0, len(text)))
	if len(frags) != 1 {
		t.Fatalf("%d fragments, want 1", len(frags))
	}
	if len(frags[0].Runs) != 3 {
		t.Fatalf("%d runs, want text + attachment + text", len(frags[0].Runs))
	}
	if !frags[0].Runs[1].IsAttachment {
		t.Error("middle run should be the attachment")
	}
	if frags[0].Width != 20+50+30 {
		t.Errorf("width = %f, want 100", frags[0].Width)
	}
}

func TestAttachmentAtomicOverflow(t *testing.T) {
	ts := newTestTypesetter()
	text := "abcd#ef\n"
	frags := ts.Typeset(Context{
		Text:          text,
		DocumentRange: core.NewRange(0, len(text)),
		MaxWidth:      50,
		Attachments:   []attachment.Anchored{anchored(30, core.NewRange(4, 1))},
	})
	checkContiguous(t, frags, core.NewRange(0, len(text)))
	// "abcd" uses 40 of 50; the 30-wide attachment cannot fit, so the
	// text flushes and the attachment starts a new fragment.
	if len(frags) < 2 {
		t.Fatalf("%d fragments, want at least 2", len(frags))
	}
	if frags[0].DocumentRange.Length != 4 {
		t.Errorf("first fragment length = %d, want 4", frags[0].DocumentRange.Length)
	}
	if !frags[1].Runs[0].IsAttachment {
		t.Error("second fragment should start with the attachment")
	}
}

func TestOverwideAttachmentGetsOwnFragment(t *testing.T) {
	ts := newTestTypesetter()
	text := "ab#cd\n"
	frags := ts.Typeset(Context{
		Text:          text,
		DocumentRange: core.NewRange(0, len(text)),
		MaxWidth:      50,
		Attachments:   []attachment.Anchored{anchored(500, core.NewRange(2, 1))},
	})
	checkContiguous(t, frags, core.NewRange(0, len(text)))
	var attFrag *Fragment
	for _, f := range frags {
		for _, r := range f.Runs {
			if r.IsAttachment {
				attFrag = f
			}
		}
	}
	if attFrag == nil {
		t.Fatal("attachment was dropped")
	}
	if len(attFrag.Runs) != 1 {
		t.Errorf("over-wide attachment shares its fragment with %d other runs", len(attFrag.Runs)-1)
	}
	if attFrag.Width != 500 {
		t.Errorf("attachment fragment width = %f, want 500", attFrag.Width)
	}
}

func TestMarkedRangesStyleWithoutBreaking(t *testing.T) {
	ts := newTestTypesetter()
	text := "hello world\n"
	plain := ts.Typeset(Context{
		Text:          text,
		DocumentRange: core.NewRange(0, len(text)),
		MaxWidth:      200,
	})
	marked := ts.Typeset(Context{
		Text:          text,
		DocumentRange: core.NewRange(0, len(text)),
		MaxWidth:      200,
		MarkedRanges:  []core.Range{core.NewRange(6, 5)},
	})

	if len(plain) != len(marked) {
		t.Fatalf("marked ranges changed fragment count: %d vs %d", len(plain), len(marked))
	}
	for i := range plain {
		if plain[i].DocumentRange != marked[i].DocumentRange {
			t.Errorf("marked ranges moved fragment %d: %v vs %v",
				i, plain[i].DocumentRange, marked[i].DocumentRange)
		}
	}

	var sawMarked bool
	for _, f := range marked {
		for _, r := range f.Runs {
			if r.Shaped.Marked {
				sawMarked = true
				if r.Range != core.NewRange(6, 5) {
					t.Errorf("marked run range = %v, want {6, 5}", r.Range)
				}
			}
		}
	}
	if !sawMarked {
		t.Error("no run carries the marked attribute")
	}
}

func TestZeroWidthBudgetStillProgresses(t *testing.T) {
	ts := newTestTypesetter()
	text := "abc\n"
	frags := ts.Typeset(Context{
		Text:          text,
		DocumentRange: core.NewRange(0, len(text)),
		MaxWidth:      1, // less than one cell
		Strategy:      BreakCharacter,
	})
	checkContiguous(t, frags, core.NewRange(0, len(text)))
	// One cluster per fragment; the terminator rides with the final one.
	if len(frags) != 3 {
		t.Errorf("%d fragments, want 3", len(frags))
	}
}
