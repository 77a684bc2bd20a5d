package service

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/daybook/internal/db"
)

// 评论可以挂载的对象类型
const (
	CommentTargetTask     = "task"
	CommentTargetReminder = "reminder"
)

const defaultLatestComments = 5

// CommentService 负责提醒与任务上的评论以及最新评论动态
type CommentService struct {
	records *db.Document[db.RecordSet]
	now     func() time.Time
}

// CommentFeedEntry 为动态中的一条评论，附带所属对象标题与类型
type CommentFeedEntry struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	ItemTitle string    `json:"item_title"`
	ItemType  string    `json:"item_type"`
}

// NewCommentService 构造 CommentService
func NewCommentService(records *db.Document[db.RecordSet]) *CommentService {
	return &CommentService{records: records, now: time.Now}
}

// Add 向任务或提醒追加一条评论
func (s *CommentService) Add(itemType, itemID, text string) (*db.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrInvalidInput)
	}

	kind := strings.ToLower(strings.TrimSpace(itemType))
	if kind != CommentTargetTask && kind != CommentTargetReminder {
		return nil, fmt.Errorf("%w: unsupported item type %q", ErrInvalidInput, itemType)
	}

	comment := db.Comment{Text: text, Timestamp: db.NewTimestamp(s.now())}
	err := s.records.Update(func(set *db.RecordSet) error {
		if kind == CommentTargetTask {
			for i := range set.Tasks {
				if set.Tasks[i].ID == itemID {
					set.Tasks[i].Comments = append(set.Tasks[i].Comments, comment)
					return nil
				}
			}
			return ErrTaskNotFound
		}

		for i := range set.Reminders {
			if set.Reminders[i].ID == itemID {
				set.Reminders[i].Comments = append(set.Reminders[i].Comments, comment)
				return nil
			}
		}
		return ErrReminderNotFound
	})
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrReminderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return &comment, nil
}

// Latest 返回最新的 limit 条评论（时间倒序）；limit<=0 时取默认 5 条
func (s *CommentService) Latest(limit int) ([]CommentFeedEntry, error) {
	if limit <= 0 {
		limit = defaultLatestComments
	}

	set, err := s.records.Load()
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	entries := make([]CommentFeedEntry, 0)
	for _, reminder := range set.Reminders {
		for _, comment := range reminder.Comments {
			entries = append(entries, CommentFeedEntry{
				Text:      comment.Text,
				Timestamp: comment.Timestamp.Time,
				ItemTitle: reminder.Title,
				ItemType:  "Reminder",
			})
		}
	}
	for _, task := range set.Tasks {
		for _, comment := range task.Comments {
			entries = append(entries, CommentFeedEntry{
				Text:      comment.Text,
				Timestamp: comment.Timestamp.Time,
				ItemTitle: task.Title,
				ItemType:  "Task",
			})
		}
	}

	slices.SortStableFunc(entries, func(a, b CommentFeedEntry) int {
		return cmp.Compare(b.Timestamp.UnixNano(), a.Timestamp.UnixNano())
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
