package db

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// 旧数据中不带时区的 ISO 时间格式，按本地时区解析
const zonelessLayout = "2006-01-02T15:04:05.999999999"

// Timestamp 序列化为 RFC3339，反序列化时兼容不带时区的 ISO 时间
type Timestamp struct {
	time.Time
}

// NewTimestamp 包装一个时间值
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalJSON 输出 RFC3339Nano
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.Time.MarshalJSON()
}

// UnmarshalJSON 先按 RFC3339 解析，失败时回退到不带时区的格式
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err == nil {
		t.Time = parsed
		return nil
	}
	parsed, zonelessErr := time.ParseInLocation(zonelessLayout, raw, time.Local)
	if zonelessErr != nil {
		return fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}
