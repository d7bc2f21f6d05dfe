// README: Frame assembler; reassembles delimited frames from raw chunk boundaries.
package stream

import (
	"strings"
	"unicode/utf8"
)

// frameDelimiter terminates one logical event on the wire: a blank line.
const frameDelimiter = "\n\n"

// FrameAssembler buffers raw transport chunks and cuts them into logical
// frames at blank-line boundaries. Chunks may split a frame anywhere or batch
// several frames together; the assembler is indifferent to either. One
// assembler belongs to one session and must not be fed concurrently.
type FrameAssembler struct {
	buf strings.Builder
}

// NewFrameAssembler returns an assembler with an empty buffer.
func NewFrameAssembler() *FrameAssembler {
	return &FrameAssembler{}
}

// Feed appends one chunk and returns every frame completed by it, in wire
// order. A chunk that is not valid UTF-8 is dropped whole and reported as
// ErrMalformedEncoding without corrupting buffered text from earlier chunks.
// Empty frames (whitespace-only between delimiters) are keep-alive padding
// and are discarded silently.
func (a *FrameAssembler) Feed(chunk []byte) ([]string, error) {
	if !utf8.Valid(chunk) {
		return nil, ErrMalformedEncoding
	}
	a.buf.Write(chunk)

	data := a.buf.String()
	var frames []string
	for {
		idx := strings.Index(data, frameDelimiter)
		if idx < 0 {
			break
		}
		frame := data[:idx]
		data = data[idx+len(frameDelimiter):]
		if strings.TrimSpace(frame) == "" {
			continue
		}
		frames = append(frames, frame)
	}

	// Whatever remains is at most one partial frame awaiting more data.
	a.buf.Reset()
	a.buf.WriteString(data)
	return frames, nil
}

// Pending returns the number of buffered bytes awaiting a delimiter.
func (a *FrameAssembler) Pending() int {
	return a.buf.Len()
}

// Reset drops any partially received frame. Called on disconnect so a new
// connection never sees stale bytes.
func (a *FrameAssembler) Reset() {
	a.buf.Reset()
}
