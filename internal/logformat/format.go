// Package logformat renders log events as single human-readable lines.
package logformat

import (
	"sort"
	"strings"
	"time"

	"github.com/V4T54L/log-tracer/internal/domain"
)

const unset = "-"

// Format renders an event as
//
//	[timestamp] [level] [appID] [thread] logger key="value" ... message
//
// Unset fields print as "-". Only the last dot-separated segment of the logger is
// shown. MDC entries are sorted by key and omitted entirely when the map is nil.
// Every field, the message included, is followed by a single space.
func Format(event domain.LogEvent) string {
	var b strings.Builder

	appendBoxed(&b, formatTime(event.Timestamp))
	appendBoxed(&b, event.Level.String())
	appendBoxed(&b, event.AppID)
	appendBoxed(&b, event.Thread)
	appendField(&b, loggerName(event.Logger))
	if event.MDC != nil {
		appendMDC(&b, event.MDC)
	}
	appendField(&b, event.Message)

	return b.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func loggerName(logger string) string {
	return logger[strings.LastIndexByte(logger, '.')+1:]
}

func appendBoxed(b *strings.Builder, value string) {
	b.WriteByte('[')
	if value == "" {
		value = unset
	}
	b.WriteString(value)
	b.WriteString("] ")
}

func appendField(b *strings.Builder, value string) {
	if value == "" {
		value = unset
	}
	b.WriteString(value)
	b.WriteByte(' ')
}

func appendMDC(b *strings.Builder, mdc map[string]string) {
	keys := make([]string, 0, len(mdc))
	for k := range mdc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(mdc[k])
		b.WriteString(`" `)
	}
}
