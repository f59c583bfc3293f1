package exec

import (
	"bytes"
	"io"
	"sync"
)

// multiWriter fans a write out to several writers under one lock so that
// stdout and stderr writes never interleave mid-chunk.
type multiWriter struct {
	writers []io.Writer
	mu      sync.Mutex
}

func newMultiWriter(writers ...io.Writer) *multiWriter {
	return &multiWriter{writers: writers}
}

func (mw *multiWriter) Write(p []byte) (int, error) {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	for _, w := range mw.writers {
		n, err := w.Write(p)
		if err != nil {
			return n, err
		}
		if n != len(p) {
			return n, io.ErrShortWrite
		}
	}
	return len(p), nil
}

// outputCapture buffers one stream and optionally tees it to a passthrough writer.
type outputCapture struct {
	buffer      *lockedBuffer
	passthrough io.Writer
}

func newOutputCapture(passthrough io.Writer) *outputCapture {
	return &outputCapture{
		buffer:      &lockedBuffer{},
		passthrough: passthrough,
	}
}

func (oc *outputCapture) Writer() io.Writer {
	if oc.passthrough != nil {
		return newMultiWriter(oc.buffer, oc.passthrough)
	}
	return oc.buffer
}

func (oc *outputCapture) String() string {
	return oc.buffer.String()
}

// newCombinedWriter returns the buffer that receives both streams.
func newCombinedWriter() *lockedBuffer {
	return &lockedBuffer{}
}

// lockedBuffer is a bytes.Buffer safe for concurrent Write and String.
type lockedBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
