package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is the severity of a log event. The zero value means the level is unset.
type Level int8

const (
	LevelUnset Level = iota
	LevelTrace
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// Levels lists every settable level in ascending severity.
var Levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// slf4j integer codes, as emitted by older producers.
var levelCodes = map[int]Level{
	0:  LevelTrace,
	10: LevelDebug,
	20: LevelInfo,
	30: LevelWarn,
	40: LevelError,
}

func (l Level) String() string {
	return levelNames[l]
}

// IsSet reports whether the level carries a value.
func (l Level) IsSet() bool {
	return l != LevelUnset
}

// ParseLevel parses a level name case-insensitively. "WARNING" is accepted as WARN
// and the slf4j integer codes 0..40 map to TRACE..ERROR.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		return LevelWarn, nil
	}
	for l, n := range levelNames {
		if n == name {
			return l, nil
		}
	}
	if code, err := strconv.Atoi(name); err == nil {
		if l, ok := levelCodes[code]; ok {
			return l, nil
		}
	}
	return LevelUnset, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.IsSet() {
		return []byte{}, nil
	}
	name, ok := levelNames[l]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(l))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value leaves the level unset.
func (l *Level) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*l = LevelUnset
		return nil
	}
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
