package logger

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LOG_ENABLE                = "HPCSWEEP_LOGLEVEL"
	LOG_PATH                  = "HPCSWEEP_LOGPATH"
	LOG_TIMEOUT               = "HPCSWEEP_LOGTIMEOUT"
	LOG_FILENAME              = "hpcsweep.log"
	LOG_DEFAULT_TIMEOUT       = 24
	HPCSWEEP_DEBUG_LOGGING    = 10
	HPCSWEEP_INFO_LOGGING     = 20
	HPCSWEEP_WARNING_LOGGING  = 30
	HPCSWEEP_ERROR_LOGGING    = 40
	HPCSWEEP_CRITICAL_LOGGING = 50
)

var (
	Log *zap.SugaredLogger

	atom     = zap.NewAtomicLevel()
	override atomic.Int64
)

func init() {
	atom.SetLevel(zapLevel(LogLevel()))
	syncers := []zapcore.WriteSyncer{zapcore.Lock(os.Stderr)}
	var ferr error
	if env := os.Getenv(LOG_PATH); len(env) > 0 {
		var f *os.File
		if f, ferr = openLogFile(env); ferr == nil {
			syncers = append(syncers, zapcore.AddSync(f))
		}
	}
	Log = New(zapcore.NewMultiWriteSyncer(syncers...))
	if ferr != nil {
		Log.Warnf("logger cannot open file: %v", ferr)
	}
}

// New builds a console logger writing to w that shares the package level.
func New(w zapcore.WriteSyncer) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), w, atom)
	return zap.New(core).Sugar()
}

// Sugar returns the package logger, for components that take an injected logger.
func Sugar() *zap.SugaredLogger {
	return Log
}

// openLogFile appends to <dir>/hpcsweep.log. The first line of the file is an
// RFC3339 tag; files older than the timeout (hours) are started over.
func openLogFile(dir string) (*os.File, error) {
	timeout := LOG_DEFAULT_TIMEOUT
	if env := os.Getenv(LOG_TIMEOUT); len(env) > 0 {
		if t, err := strconv.Atoi(env); err == nil {
			timeout = t
		}
	}
	logfile := filepath.Join(dir, LOG_FILENAME)
	if f, err := os.Open(logfile); err == nil {
		scanner := bufio.NewScanner(f)
		scanner.Scan()
		f.Close()
		if tag, terr := time.Parse(time.RFC3339, scanner.Text()); terr != nil ||
			int(time.Since(tag).Hours()) > timeout {
			os.Remove(logfile)
		}
	}
	f, err := os.OpenFile(logfile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	if stat, serr := f.Stat(); serr == nil && stat.Size() == 0 {
		f.WriteString(time.Now().Format(time.RFC3339) + "\n")
		f.Sync()
	}
	return f, nil
}

// SetLevel overrides the environment level for the rest of the process.
func SetLevel(level int) {
	override.Store(int64(level))
	atom.SetLevel(zapLevel(level))
}

func LogLevel() int {
	if level := override.Load(); level > 0 {
		return int(level)
	}
	if env, err := strconv.Atoi(os.Getenv(LOG_ENABLE)); err == nil {
		return env
	}
	return HPCSWEEP_CRITICAL_LOGGING
}

func zapLevel(level int) zapcore.Level {
	switch {
	case level <= HPCSWEEP_DEBUG_LOGGING:
		return zapcore.DebugLevel
	case level <= HPCSWEEP_INFO_LOGGING:
		return zapcore.InfoLevel
	case level <= HPCSWEEP_WARNING_LOGGING:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func DebugObj(name string, v interface{}) {
	if LogLevel() <= HPCSWEEP_DEBUG_LOGGING {
		Log.Debugw(name, "object", v)
	}
}

func DebugPrintf(format string, a ...interface{}) {
	if LogLevel() <= HPCSWEEP_DEBUG_LOGGING {
		Log.Debugf(format, a...)
	}
}

func InfoObj(name string, v interface{}) {
	if LogLevel() <= HPCSWEEP_INFO_LOGGING {
		Log.Infow(name, "object", v)
	}
}

func InfoPrintf(format string, a ...interface{}) {
	if LogLevel() <= HPCSWEEP_INFO_LOGGING {
		Log.Infof(format, a...)
	}
}

func WarningObj(name string, v interface{}) {
	if LogLevel() <= HPCSWEEP_WARNING_LOGGING {
		Log.Warnw(name, "object", v)
	}
}

func WarningPrintf(format string, a ...interface{}) {
	if LogLevel() <= HPCSWEEP_WARNING_LOGGING {
		Log.Warnf(format, a...)
	}
}

func ErrorObj(name string, v interface{}) {
	if LogLevel() <= HPCSWEEP_ERROR_LOGGING {
		Log.Errorw(name, "object", v)
	}
}

func ErrorPrintf(format string, a ...interface{}) {
	if LogLevel() <= HPCSWEEP_ERROR_LOGGING {
		Log.Errorf(format, a...)
	}
}

func CriticalObj(name string, v interface{}) {
	if LogLevel() <= HPCSWEEP_CRITICAL_LOGGING {
		Log.Errorw(name, "severity", "critical", "object", v)
	}
}

func CriticalPrintf(format string, a ...interface{}) {
	if LogLevel() <= HPCSWEEP_CRITICAL_LOGGING {
		Log.With("severity", "critical").Errorf(format, a...)
	}
}
