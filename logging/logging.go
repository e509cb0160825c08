package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
)

// DbgFlags are flags for enabling debug output
type DbgFlags uint

// The defined debug flags.
const (
	DbgFPkt DbgFlags = 1 << iota
	DbgFLSP
	DbgFUpd
	DbgFTopo
	DbgFHTTP
)

// FlagNames map a string name value to the flag bit value
var FlagNames = map[string]DbgFlags{
	"http":   DbgFHTTP,
	"lsp":    DbgFLSP,
	"packet": DbgFPkt,
	"topo":   DbgFTopo,
	"update": DbgFUpd,
}

// FlagTags are the values of the "flag" field of flagged log messages.
var FlagTags = map[DbgFlags]string{
	DbgFPkt:  "PACKET",
	DbgFLSP:  "LSP",
	DbgFUpd:  "UPDATE",
	DbgFTopo: "TOPO",
	DbgFHTTP: "HTTP",
}

// GlbDebug are the enabled debugs.
var GlbDebug DbgFlags

// GlbTrace are the enabled traces.
var GlbTrace DbgFlags

var logger = &log.Logger{
	Handler: text.New(os.Stderr),
	Level:   log.InfoLevel,
}

// SetOutput directs all log output to w.
func SetOutput(w io.Writer) {
	logger.Handler = text.New(w)
}

// SetLevel sets the minimum level logged. TRACE is accepted and treated as
// DEBUG with all trace flags enabled.
func SetLevel(level string) error {
	if strings.EqualFold(level, "trace") {
		logger.Level = log.DebugLevel
		GlbTrace = allFlags()
		return nil
	}
	l, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("unknown log level: %s", level)
	}
	logger.Level = l
	return nil
}

func allFlags() (flags DbgFlags) {
	for _, f := range FlagNames {
		flags |= f
	}
	return
}

func splitArg(arg string) []string {
	return strings.FieldsFunc(arg, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

func parseFlags(arg, what string) (DbgFlags, error) {
	if arg == "all" {
		return allFlags(), nil
	}
	var flags DbgFlags
	for _, s := range splitArg(arg) {
		flag, ok := FlagNames[s]
		if !ok {
			return 0, fmt.Errorf("unknown %s flag: %s", what, s)
		}
		flags |= flag
	}
	return flags, nil
}

// InitLogging enables the trace and debug flags named in the comma or space
// separated lists trace and debug ("all" enables every flag). Enabling any
// flag lowers the log level to DEBUG.
func InitLogging(trace, debug string) error {
	t, err := parseFlags(trace, "trace")
	if err != nil {
		return err
	}
	d, err := parseFlags(debug, "debug")
	if err != nil {
		return err
	}
	GlbTrace |= t
	GlbDebug |= d
	if GlbTrace|GlbDebug != 0 && logger.Level > log.DebugLevel {
		logger.Level = log.DebugLevel
	}
	return nil
}

// TraceIsSet returns true if the given trace flag is set.
func TraceIsSet(flag DbgFlags) bool {
	return (flag & GlbTrace) != 0
}

// Trace logs at debug level if the given trace flag is set.
func Trace(flag DbgFlags, format string, a ...interface{}) {
	if TraceIsSet(flag) {
		logger.WithField("flag", FlagTags[flag]).WithField("trace", true).Debugf(format, a...)
	}
}

// DebugIsSet returns true if the given debug flag is set.
func DebugIsSet(flag DbgFlags) bool {
	return (flag & (GlbTrace | GlbDebug)) != 0
}

// Debug logs at debug level if the given debug flag is set.
func Debug(flag DbgFlags, format string, a ...interface{}) {
	if DebugIsSet(flag) {
		logger.WithField("flag", FlagTags[flag]).Debugf(format, a...)
	}
}

// Info logs unconditionally.
func Info(format string, a ...interface{}) {
	logger.Infof(format, a...)
}

// Warn logs unconditionally at warn level.
func Warn(format string, a ...interface{}) {
	logger.Warnf(format, a...)
}

// Trap logs a protocol trap (e.g., a malformed PDU) at error level.
func Trap(format string, a ...interface{}) {
	logger.WithField("trap", true).Errorf(format, a...)
}

// Panicf logs at error level and panics with the formatted message.
func Panicf(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	logger.Error(msg)
	panic(msg)
}
