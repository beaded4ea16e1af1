package util

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Writer buffers emitted text and flushes it to the process-wide output
// channel. It carries LLVM textual IR rather than assembler mnemonics.
type Writer struct {
	sb strings.Builder
	c  chan string
}

// ---------------------
// ----- globals -----
// ---------------------

var wc chan string     // Write channel used for receiving data from worker threads.
var cc chan error      // Close channel used by main thread to signal to end write operations.
var wg *sync.WaitGroup // Used for synchronising when I/O finished writing to output.

// maxForeignModuleBytes bounds how much of a "use zig" source file the
// extern-ingestion path will read (SPEC §4.4.8).
const maxForeignModuleBytes = 10 << 20 // 10 MiB

// ---------------------
// ----- functions -----
// ---------------------

// Write writes a format string to the Writer's buffer.
func (w *Writer) Write(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format, args...))
}

// WriteString writes a plain string to the Writer's buffer.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// Flush empties the Writer's buffer and sends the buffer data to the
// designated output writer over the Writer's channel.
func (w *Writer) Flush() {
	w.c <- w.sb.String()
	w.sb = strings.Builder{}
}

// Close flushes the Writer's buffer, detaches the Writer from the shared
// output channel (which stays open for other writers) and marks the Writer
// done on the WaitGroup.
func (w *Writer) Close() {
	w.Flush()
	w.c = nil
	wg.Done()
}

// NewWriter returns a new Writer. Must not be called before the main thread
// has called ListenWrite.
func NewWriter() Writer {
	wg.Add(1)
	return Writer{c: wc}
}

// ReadForeignModuleSource reads up to maxForeignModuleBytes of the foreign
// module at path, resolved relative to sourceDir when path is not already
// absolute (SPEC §4.4.8). Returns the absolute path and its contents.
func ReadForeignModuleSource(sourceDir, path string) (string, []byte, error) {
	p := path
	if !filepath.IsAbs(p) && sourceDir != "" {
		p = filepath.Join(sourceDir, path)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", nil, fmt.Errorf("could not resolve foreign module path %q: %w", path, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return abs, nil, fmt.Errorf("could not open foreign module %q: %w", abs, err)
	}
	defer f.Close()

	buf := make([]byte, maxForeignModuleBytes)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return abs, nil, fmt.Errorf("could not read foreign module %q: %w", abs, err)
	}
	return abs, buf[:n], nil
}

// ListenWrite listens for worker thread outputs. Received data is written
// to f if non-nil, else to stdout. The function loops until Close is
// called.
func ListenWrite(f *os.File, wgg *sync.WaitGroup) {
	wg = wgg
	wc = make(chan string, 1)
	cc = make(chan error, 1)
	var w *bufio.Writer
	if f != nil {
		w = bufio.NewWriter(f)
	} else {
		w = bufio.NewWriter(os.Stdout)
	}

	go func(wc chan string, cc chan error) {
		defer close(wc)
		defer close(cc)
		for {
			select {
			case s := <-wc:
				if _, err := w.WriteString(s); err != nil {
					fmt.Println(err)
				}
				if err := w.Flush(); err != nil {
					fmt.Println(err)
				}
			case <-cc:
				return
			}
		}
	}(wc, cc)
}

// Close sends the termination signal to the writer listener.
func Close() {
	cc <- nil
}
