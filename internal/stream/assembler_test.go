// README: Frame assembler tests (chunk boundaries, partial frames, encoding).
package stream

import (
	"reflect"
	"testing"
)

func feedAll(t *testing.T, a *FrameAssembler, chunks ...string) []string {
	t.Helper()
	var frames []string
	for _, c := range chunks {
		got, err := a.Feed([]byte(c))
		if err != nil {
			t.Fatalf("Feed(%q): %v", c, err)
		}
		frames = append(frames, got...)
	}
	return frames
}

func TestFrameAssembler_SingleChunkMultipleFrames(t *testing.T) {
	a := NewFrameAssembler()
	frames := feedAll(t, a, "data: {\"a\":1}\n\ndata: {\"b\":2}\n\n")
	want := []string{`data: {"a":1}`, `data: {"b":2}`}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("frames = %v, want %v", frames, want)
	}
	if a.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", a.Pending())
	}
}

// TestFrameAssembler_ByteByByte checks framing idempotence: one-byte chunks
// must yield the same ordered frames as one big chunk.
func TestFrameAssembler_ByteByByte(t *testing.T) {
	msg := "data: {\"a\":1}\n\ndata: {\"b\":2}\n\n"

	whole := feedAll(t, NewFrameAssembler(), msg)

	a := NewFrameAssembler()
	var drip []string
	for i := 0; i < len(msg); i++ {
		drip = append(drip, feedAll(t, a, msg[i:i+1])...)
	}

	if !reflect.DeepEqual(whole, drip) {
		t.Errorf("byte-by-byte frames %v differ from single-chunk frames %v", drip, whole)
	}
}

// TestFrameAssembler_NoPartialLeakage holds a frame back until its delimiter
// arrives in a later chunk.
func TestFrameAssembler_NoPartialLeakage(t *testing.T) {
	a := NewFrameAssembler()

	frames := feedAll(t, a, "data: {\"a\":1}")
	if len(frames) != 0 {
		t.Fatalf("frames before delimiter = %v, want none", frames)
	}
	if a.Pending() == 0 {
		t.Fatal("partial frame must stay buffered")
	}

	frames = feedAll(t, a, "\n\n")
	if len(frames) != 1 || frames[0] != `data: {"a":1}` {
		t.Errorf("frames after delimiter = %v, want exactly the buffered frame", frames)
	}
}

func TestFrameAssembler_DelimiterSplitAcrossChunks(t *testing.T) {
	a := NewFrameAssembler()
	frames := feedAll(t, a, "data: x\n", "\ndata: y\n\n")
	want := []string{"data: x", "data: y"}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("frames = %v, want %v", frames, want)
	}
}

func TestFrameAssembler_EmptyFramesDiscarded(t *testing.T) {
	a := NewFrameAssembler()
	frames := feedAll(t, a, "\n\n\n\ndata: x\n\n\n\n")
	if !reflect.DeepEqual(frames, []string{"data: x"}) {
		t.Errorf("frames = %v, want keep-alive padding dropped", frames)
	}
}

func TestFrameAssembler_MultiLineFrame(t *testing.T) {
	a := NewFrameAssembler()
	frames := feedAll(t, a, "event: update\ndata: {\"a\":1}\n\n")
	if len(frames) != 1 || frames[0] != "event: update\ndata: {\"a\":1}" {
		t.Errorf("frames = %v, want one interleaved multi-line frame", frames)
	}
}

func TestFrameAssembler_MalformedChunkDropped(t *testing.T) {
	a := NewFrameAssembler()
	feedAll(t, a, "data: par")

	if _, err := a.Feed([]byte{0xff, 0xfe}); err != ErrMalformedEncoding {
		t.Fatalf("Feed(invalid utf8) err = %v, want ErrMalformedEncoding", err)
	}

	// Buffered text from prior good chunks must survive intact.
	frames := feedAll(t, a, "tial\n\n")
	if len(frames) != 1 || frames[0] != "data: partial" {
		t.Errorf("frames = %v, want buffer untouched by bad chunk", frames)
	}
}

func TestFrameAssembler_Reset(t *testing.T) {
	a := NewFrameAssembler()
	feedAll(t, a, "data: stale")
	a.Reset()
	frames := feedAll(t, a, "\n\n")
	if len(frames) != 0 {
		t.Errorf("frames = %v, want stale buffer cleared", frames)
	}
}
