package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Printer writes formatted messages to its output when enabled and
// always mirrors them to the attached log writer, if any.
type Printer interface {
	Printf(string, ...any)
	Print(...any)
	Println(...any)

	SetEnabled(bool)
	IsEnabled() bool

	SetLogger(io.Writer)
}

func NewPrinter(w io.Writer, max int) Printer {
	return &printer{
		out: w,
		on:  true,
		max: max,
	}
}

type printer struct {
	sync.Mutex

	out io.Writer
	on  bool

	// truncate messages longer than max unless tracing; 0 disables
	max int

	logger io.Writer
}

func (r *printer) SetEnabled(b bool) {
	r.Lock()
	defer r.Unlock()
	r.on = b
}

func (r *printer) IsEnabled() bool {
	r.Lock()
	defer r.Unlock()
	return r.on
}

func (r *printer) write(s string) {
	r.Lock()
	defer r.Unlock()

	if r.on {
		fmt.Fprint(r.out, Clip(s, r.max))
	}
	if r.logger != nil {
		fmt.Fprint(r.logger, s)
	}
}

func (r *printer) Printf(format string, a ...any) {
	r.write(fmt.Sprintf(format, a...))
}

func (r *printer) Print(a ...any) {
	r.write(fmt.Sprint(a...))
}

func (r *printer) Println(a ...any) {
	r.write(fmt.Sprintln(a...))
}

func (r *printer) SetLogger(w io.Writer) {
	r.Lock()
	defer r.Unlock()
	r.logger = w
}

var printLogger Printer = NewPrinter(os.Stdout, 0)

var debugLogger Printer = NewPrinter(os.Stderr, 500)
var infoLogger Printer = NewPrinter(os.Stderr, 0)
var errLogger Printer = NewPrinter(os.Stderr, 0)

// Printer for standard output
func Printf(format string, a ...any) {
	printLogger.Printf(format, a...)
}

func Print(a ...any) {
	printLogger.Print(a...)
}

func Println(a ...any) {
	printLogger.Println(a...)
}

// Debug logger
func Debugf(format string, a ...any) {
	debugLogger.Printf(format, a...)
}

func Debugln(a ...any) {
	debugLogger.Println(a...)
}

// Info logger
func Infof(format string, a ...any) {
	infoLogger.Printf(format, a...)
}

func Infoln(a ...any) {
	infoLogger.Println(a...)
}

// Error logger
func Errorf(format string, a ...any) {
	errLogger.Printf(format, a...)
}

func Errorln(a ...any) {
	errLogger.Println(a...)
}

type Level int

const (
	Quiet Level = iota
	Normal
	Verbose
	Tracing
)

var logLevel Level

func IsVerbose() bool {
	return logLevel >= Verbose
}

func IsQuiet() bool {
	return logLevel == Quiet
}

func IsTrace() bool {
	return logLevel == Tracing
}

func SetLogLevel(level Level) {
	logLevel = level

	// stdout
	printLogger.SetEnabled(true)

	// stderr
	switch level {
	case Quiet:
		debugLogger.SetEnabled(false)
		infoLogger.SetEnabled(false)
		errLogger.SetEnabled(false)
	case Normal:
		debugLogger.SetEnabled(false)
		infoLogger.SetEnabled(true)
		errLogger.SetEnabled(true)
	case Verbose, Tracing:
		debugLogger.SetEnabled(true)
		infoLogger.SetEnabled(true)
		errLogger.SetEnabled(true)
	}
}

func SetLogOutput(w io.Writer) {
	printLogger.SetLogger(w)

	debugLogger.SetLogger(w)
	infoLogger.SetLogger(w)
	errLogger.SetLogger(w)
}

// Set log level to Normal by default
func init() {
	SetLogLevel(Normal)
}
