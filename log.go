package netdesign

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/golang/glog"
)

var maxLvl int

// InitLoggers routes glog to stderr and sets the highest level Log still
// prints: 1 error, 2 info, 3 debug, 4 spam.
func InitLoggers(logLvl int) {
	maxLvl = logLvl
	flag.Set("logtostderr", "true")
	flag.Set("v", strconv.Itoa(logLvl))
}

func Log(msgLvl int, printF string, args ...interface{}) {
	if msgLvl > maxLvl {
		return
	}
	switch msgLvl {
	case 1:
		glog.ErrorDepth(1, fmt.Sprintf(printF, args...))
	case 2:
		glog.InfoDepth(1, fmt.Sprintf(printF, args...))
	case 3:
		glog.V(3).Infof("DEBUG "+printF, args...)
	case 4:
		glog.V(4).Infof("SPAM "+printF, args...)
	}
}

// EngineLogger forwards the progress lines of the mip engine to Log.
type EngineLogger struct {
	Lvl int
}

func (l EngineLogger) Print(v ...interface{}) {
	Log(l.Lvl, "%s", fmt.Sprint(v...))
}
