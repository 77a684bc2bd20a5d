package db

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentLoadsZonelessTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), RecordsFile)
	legacy := `{
    "reminders": [
        {
            "id": "r1",
            "title": "交房租",
            "description": "",
            "date": "2024-01-31",
            "recurrence": "Monthly",
            "created_at": "2024-01-05T12:34:56.789012",
            "comments": [{"text": "已提醒房东", "timestamp": "2024-01-06T08:00:00"}]
        }
    ],
    "tasks": [
        {
            "id": "t1",
            "title": "整理发票",
            "description": "",
            "status": "Yet to Start",
            "created_at": "2024-02-01T09:30:00.5",
            "comments": []
        }
    ]
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	set, err := NewDocument(path, NewRecordSet).Load()
	require.NoError(t, err)
	require.Len(t, set.Reminders, 1)
	require.Len(t, set.Tasks, 1)

	created := set.Reminders[0].CreatedAt
	assert.True(t, created.Equal(time.Date(2024, 1, 5, 12, 34, 56, 789012000, time.Local)))
	require.Len(t, set.Reminders[0].Comments, 1)
	assert.Equal(t, 8, set.Reminders[0].Comments[0].Timestamp.Hour())
	assert.Equal(t, 500*time.Millisecond, time.Duration(set.Tasks[0].CreatedAt.Nanosecond()))
}

func TestTimestampRoundTripUsesRFC3339(t *testing.T) {
	original := NewTimestamp(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	raw, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T10:00:00Z"`, string(raw))

	var decoded Timestamp
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, decoded.Equal(original.Time))
}

func TestTimestampEmptyAndMalformed(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`""`), &ts))
	assert.True(t, ts.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`12345`), &ts))
}
