/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Compact console formatter for Bletchley logs with optional ANSI colours,
caller information and sorted structured fields.
*/

package logging

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// maxValueLen truncates long field values such as plaintexts
const maxValueLen = 60

// CustomFormatter renders one line per entry
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format implements logrus.Formatter
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var out strings.Builder

	if f.Timestamp {
		f.write(&out, 36, entry.Time.Format("2006-01-02 15:04:05.000"))
		out.WriteByte(' ')
	}

	f.write(&out, levelColor(entry.Level), fmt.Sprintf("%-5s", strings.ToUpper(entry.Level.String())))
	out.WriteByte(' ')

	if prefix := searchPrefix(entry.Data); prefix != "" {
		f.write(&out, 35, "["+prefix+"]")
		out.WriteByte(' ')
	}

	if f.Caller && entry.HasCaller() {
		f.write(&out, 33, fmt.Sprintf("[%s:%d]", filepath.Base(entry.Caller.File), entry.Caller.Line))
		out.WriteByte(' ')
	}

	out.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		out.WriteByte(' ')
		out.WriteString(f.formatFields(entry.Data))
	}
	out.WriteByte('\n')
	return []byte(out.String()), nil
}

func (f *CustomFormatter) write(out *strings.Builder, color int, s string) {
	if f.Colors {
		fmt.Fprintf(out, "\033[%dm%s\033[0m", color, s)
		return
	}
	out.WriteString(s)
}

func levelColor(level logrus.Level) int {
	switch level {
	case logrus.InfoLevel:
		return 32
	case logrus.WarnLevel:
		return 33
	case logrus.ErrorLevel:
		return 31
	case logrus.FatalLevel, logrus.PanicLevel:
		return 35
	default:
		return 37
	}
}

// searchPrefix tags entries that belong to a cipher search
func searchPrefix(fields logrus.Fields) string {
	if cipher, ok := fields["cipher"]; ok {
		return strings.ToUpper(fmt.Sprint(cipher))
	}
	return ""
}

// formatFields renders fields sorted by key, skipping the cipher prefix
func (f *CustomFormatter) formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "cipher" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := formatValue(fields[k])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", k, v))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", k, v))
		}
	}
	return strings.Join(parts, " ")
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case string:
		if len(v) > maxValueLen {
			return fmt.Sprintf("%q...", v[:maxValueLen])
		}
		if strings.ContainsAny(v, " \t") {
			return fmt.Sprintf("%q", v)
		}
		return v
	case error:
		return fmt.Sprintf("%q", v.Error())
	default:
		return fmt.Sprintf("%v", v)
	}
}
