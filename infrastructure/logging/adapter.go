package logging

import (
	"fmt"
	"strings"
)

// PrintfLogger routes printf-style library logs (such as badger's) into bolt.
type PrintfLogger struct {
	component string
}

// NewPrintfLogger creates an adapter that tags every line with a component.
func NewPrintfLogger(component string) PrintfLogger {
	return PrintfLogger{component: component}
}

func (l PrintfLogger) Errorf(format string, args ...interface{}) {
	Error().Add(Component(l.component)).Msg(line(format, args))
}

func (l PrintfLogger) Warningf(format string, args ...interface{}) {
	Warn().Add(Component(l.component)).Msg(line(format, args))
}

func (l PrintfLogger) Infof(format string, args ...interface{}) {
	Debug().Add(Component(l.component)).Msg(line(format, args))
}

func (l PrintfLogger) Debugf(format string, args ...interface{}) {
	Trace().Add(Component(l.component)).Msg(line(format, args))
}

func line(format string, args []interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
