/*
Copyright © 2018 the icets authors.
This file is part of icets.

icets is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

icets is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with icets.  If not, see <http://www.gnu.org/licenses/>.
*/

package icetsutil

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the logger used by the commands. Messages at Info level and
// above go to standard error; all messages go to the log file once
// setLogFile has been called.
var Log = newLogger(os.Stderr)

// logFile receives all messages when its writer is set.
var logFile = &writerHook{
	levels:    logrus.AllLevels,
	formatter: &logrus.TextFormatter{DisableColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339Nano},
}

func newLogger(console io.Writer) *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	l.Level = logrus.DebugLevel
	l.Hooks.Add(&writerHook{
		w:         console,
		levels:    levelsFrom(logrus.InfoLevel),
		formatter: &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339, DisableSorting: true},
	})
	l.Hooks.Add(logFile)
	return l
}

// setLogFile directs the debug log to a rotating file at path, closing
// any log file set before.
func setLogFile(path string) {
	if c, ok := logFile.w.(io.Closer); ok {
		c.Close()
	}
	logFile.w = &lumberjack.Logger{Filename: path, MaxSize: 10, MaxBackups: 5}
}

// writerHook writes entries at the given levels to w.
type writerHook struct {
	w         io.Writer
	levels    []logrus.Level
	formatter logrus.Formatter
}

func (h *writerHook) Levels() []logrus.Level { return h.levels }

func (h *writerHook) Fire(e *logrus.Entry) error {
	if h.w == nil {
		return nil
	}
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.w.Write(b)
	return err
}

// levelsFrom returns the levels at least as severe as l.
func levelsFrom(l logrus.Level) []logrus.Level {
	var o []logrus.Level
	for _, lv := range logrus.AllLevels {
		if lv <= l {
			o = append(o, lv)
		}
	}
	return o
}
