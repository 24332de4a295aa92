package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

type Output interface {
	Section(icon, title string)
	Header(title string)
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
	Detail(format string, args ...interface{})
	Debug(format string, args ...interface{})
	Println(s string)
	Printf(format string, args ...interface{})
}

const (
	LevelSection = "section"
	LevelHeader  = "header"
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
	LevelDetail  = "detail"
	LevelDebug   = "debug"
)

// prefixes are prepended to formatted messages per level.
var prefixes = map[string]string{
	LevelInfo:    "  ",
	LevelSuccess: "  ✅ ",
	LevelWarning: "  ⚠️  ",
	LevelError:   "  ❌ ",
	LevelDetail:  "   ",
	LevelDebug:   "  🔍 [DEBUG] ",
}

func sectionText(icon, title string) string {
	return fmt.Sprintf("\n%s %s", icon, title)
}

func headerText(title string) string {
	return fmt.Sprintf("\n%s\n%s", title, strings.Repeat("=", len(title)))
}

type Option func(*options)

type options struct {
	debug bool
}

// WithDebug enables Debug lines, which are dropped otherwise.
func WithDebug(enabled bool) Option {
	return func(o *options) {
		o.debug = enabled
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// StreamingOutput writes every line as soon as it is produced.
type StreamingOutput struct {
	writer io.Writer
	debug  bool
	mu     sync.Mutex
}

func NewStreamingOutput(writer io.Writer, opts ...Option) *StreamingOutput {
	if writer == nil {
		writer = os.Stdout
	}
	return &StreamingOutput{writer: writer, debug: applyOptions(opts).debug}
}

func (o *StreamingOutput) write(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprint(o.writer, s)
}

func (o *StreamingOutput) line(level, format string, args []interface{}) {
	o.write(prefixes[level] + fmt.Sprintf(format, args...) + "\n")
}

func (o *StreamingOutput) Section(icon, title string) { o.write(sectionText(icon, title) + "\n") }
func (o *StreamingOutput) Header(title string)        { o.write(headerText(title) + "\n") }

func (o *StreamingOutput) Info(format string, args ...interface{}) {
	o.line(LevelInfo, format, args)
}

func (o *StreamingOutput) Success(format string, args ...interface{}) {
	o.line(LevelSuccess, format, args)
}

func (o *StreamingOutput) Warning(format string, args ...interface{}) {
	o.line(LevelWarning, format, args)
}

func (o *StreamingOutput) Error(format string, args ...interface{}) {
	o.line(LevelError, format, args)
}

func (o *StreamingOutput) Detail(format string, args ...interface{}) {
	o.line(LevelDetail, format, args)
}

func (o *StreamingOutput) Debug(format string, args ...interface{}) {
	if !o.debug {
		return
	}
	o.line(LevelDebug, format, args)
}

func (o *StreamingOutput) Println(s string) { o.write(s + "\n") }

func (o *StreamingOutput) Printf(format string, args ...interface{}) {
	o.write(fmt.Sprintf(format, args...))
}

type OutputLine struct {
	Level   string
	Message string
}

// BufferedOutput collects lines so that reports produced concurrently can be
// flushed one after another.
type BufferedOutput struct {
	lines []OutputLine
	debug bool
	mu    sync.Mutex
}

func NewBufferedOutput(opts ...Option) *BufferedOutput {
	return &BufferedOutput{lines: make([]OutputLine, 0), debug: applyOptions(opts).debug}
}

func (o *BufferedOutput) add(level, msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines = append(o.lines, OutputLine{Level: level, Message: msg})
}

func (o *BufferedOutput) line(level, format string, args []interface{}) {
	o.add(level, prefixes[level]+fmt.Sprintf(format, args...))
}

func (o *BufferedOutput) Section(icon, title string) { o.add(LevelSection, sectionText(icon, title)) }
func (o *BufferedOutput) Header(title string)        { o.add(LevelHeader, headerText(title)) }

func (o *BufferedOutput) Info(format string, args ...interface{}) {
	o.line(LevelInfo, format, args)
}

func (o *BufferedOutput) Success(format string, args ...interface{}) {
	o.line(LevelSuccess, format, args)
}

func (o *BufferedOutput) Warning(format string, args ...interface{}) {
	o.line(LevelWarning, format, args)
}

func (o *BufferedOutput) Error(format string, args ...interface{}) {
	o.line(LevelError, format, args)
}

func (o *BufferedOutput) Detail(format string, args ...interface{}) {
	o.line(LevelDetail, format, args)
}

func (o *BufferedOutput) Debug(format string, args ...interface{}) {
	if !o.debug {
		return
	}
	o.line(LevelDebug, format, args)
}

func (o *BufferedOutput) Println(s string) { o.add(LevelInfo, s) }

func (o *BufferedOutput) Printf(format string, args ...interface{}) {
	o.add(LevelInfo, fmt.Sprintf(format, args...))
}

func (o *BufferedOutput) Flush(writer io.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, line := range o.lines {
		fmt.Fprintln(writer, line.Message)
	}
}

func (o *BufferedOutput) Lines() []OutputLine {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]OutputLine{}, o.lines...)
}

// NoOpOutput is a no-op implementation for tests
type NoOpOutput struct{}

func NewNoOpOutput() *NoOpOutput {
	return &NoOpOutput{}
}

func (o *NoOpOutput) Section(icon, title string)                 {}
func (o *NoOpOutput) Header(title string)                        {}
func (o *NoOpOutput) Info(format string, args ...interface{})    {}
func (o *NoOpOutput) Success(format string, args ...interface{}) {}
func (o *NoOpOutput) Warning(format string, args ...interface{}) {}
func (o *NoOpOutput) Error(format string, args ...interface{})   {}
func (o *NoOpOutput) Detail(format string, args ...interface{})  {}
func (o *NoOpOutput) Debug(format string, args ...interface{})   {}
func (o *NoOpOutput) Println(s string)                           {}
func (o *NoOpOutput) Printf(format string, args ...interface{})  {}
