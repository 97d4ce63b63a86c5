package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// field returns the first non-empty value among paths, numbers rendered as text.
func field(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := r.Get(p)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

func parseObject(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		// let encoding/json produce the syntax error
		var v any
		return gjson.Result{}, json.Unmarshal(data, &v)
	}
	return gjson.ParseBytes(data), nil
}

// Timestamp is epoch milliseconds. It decodes from numbers, numeric
// strings and date strings.
type Timestamp int64

// At converts t to a Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

func (t Timestamp) Time() time.Time {
	if t == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(t))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = timestampOf(gjson.ParseBytes(data))
	return nil
}

func timestampOf(v gjson.Result) Timestamp {
	switch v.Type {
	case gjson.Number:
		return Timestamp(v.Int())
	case gjson.String:
		s := strings.TrimSpace(v.String())
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Timestamp(n)
		}
		if tm, ok := ParseDate(s); ok {
			return At(tm)
		}
	}
	return 0
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the date formats found in stored records.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm, true
		}
	}
	return time.Time{}, false
}

// Keyed is implemented by records that carry their storage key.
type Keyed[T any] interface {
	*T
	json.Unmarshaler
	SetKey(string)
}

// Decode reads a raw store document into T and tags it with key.
func Decode[T any, PT Keyed[T]](key string, raw []byte) (T, error) {
	var v T
	if err := PT(&v).UnmarshalJSON(raw); err != nil {
		return v, err
	}
	PT(&v).SetKey(key)
	return v, nil
}
