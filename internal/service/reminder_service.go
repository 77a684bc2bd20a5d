package service

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/daybook/internal/db"
	"github.com/daybook/internal/logger"
	"github.com/daybook/internal/recurrence"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrReminderNotFound 在指定提醒不存在时返回
var ErrReminderNotFound = errors.New("reminder not found")

// ReminderService 负责提醒的增删改查以及基于重复规则的日期推算。
// 存储中日期或规则无法解析的提醒默认跳过并记录日志，strict 模式下改为返回 ErrMalformedRecord。
type ReminderService struct {
	records *db.Document[db.RecordSet]
	log     *zap.Logger
	strict  bool
	now     func() time.Time
}

// ReminderInput 定义创建/更新提醒时可配置字段
type ReminderInput struct {
	Title       string
	Description string
	Date        string
	Recurrence  string
}

// ScheduledReminder 是附带展示日期的提醒副本，DisplayDate 不落盘
type ScheduledReminder struct {
	db.Reminder
	DisplayDate string `json:"display_date"`
}

// NewReminderService 构造 ReminderService
func NewReminderService(records *db.Document[db.RecordSet], log *zap.Logger, strict bool) *ReminderService {
	return &ReminderService{
		records: records,
		log:     logger.OrNop(log),
		strict:  strict,
		now:     time.Now,
	}
}

// List 返回全部提醒
func (s *ReminderService) List() ([]db.Reminder, error) {
	set, err := s.records.Load()
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	if set.Reminders == nil {
		return []db.Reminder{}, nil
	}
	return set.Reminders, nil
}

// Get 根据 ID 获取提醒
func (s *ReminderService) Get(id string) (*db.Reminder, error) {
	reminders, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range reminders {
		if reminders[i].ID == id {
			return &reminders[i], nil
		}
	}
	return nil, ErrReminderNotFound
}

// Create 新建提醒
func (s *ReminderService) Create(input ReminderInput) (*db.Reminder, error) {
	rule, err := validateReminderInput(input)
	if err != nil {
		return nil, err
	}

	reminder := db.Reminder{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Date:        strings.TrimSpace(input.Date),
		Recurrence:  string(rule),
		CreatedAt:   db.NewTimestamp(s.now()),
		Comments:    []db.Comment{},
	}

	if err := s.records.Update(func(set *db.RecordSet) error {
		set.Reminders = append(set.Reminders, reminder)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	return &reminder, nil
}

// Update 原地更新提醒字段，CreatedAt 与评论保持不变
func (s *ReminderService) Update(id string, input ReminderInput) (*db.Reminder, error) {
	rule, err := validateReminderInput(input)
	if err != nil {
		return nil, err
	}

	var updated db.Reminder
	err = s.records.Update(func(set *db.RecordSet) error {
		for i := range set.Reminders {
			if set.Reminders[i].ID != id {
				continue
			}
			set.Reminders[i].Title = strings.TrimSpace(input.Title)
			set.Reminders[i].Description = strings.TrimSpace(input.Description)
			set.Reminders[i].Date = strings.TrimSpace(input.Date)
			set.Reminders[i].Recurrence = string(rule)
			updated = set.Reminders[i]
			return nil
		}
		return ErrReminderNotFound
	})
	if err != nil {
		if errors.Is(err, ErrReminderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update reminder: %w", err)
	}
	return &updated, nil
}

// Delete 删除提醒
func (s *ReminderService) Delete(id string) error {
	err := s.records.Update(func(set *db.RecordSet) error {
		for i := range set.Reminders {
			if set.Reminders[i].ID == id {
				set.Reminders = slices.Delete(set.Reminders, i, i+1)
				return nil
			}
		}
		return ErrReminderNotFound
	})
	if err != nil && !errors.Is(err, ErrReminderNotFound) {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return err
}

// Upcoming 返回未来 weeks 周内（含今天）会发生的提醒，按展示日期升序
func (s *ReminderService) Upcoming(weeks int) ([]ScheduledReminder, error) {
	if weeks < 1 {
		return nil, fmt.Errorf("%w: weeks must be positive", ErrInvalidInput)
	}

	reminders, err := s.List()
	if err != nil {
		return nil, err
	}

	today := recurrence.Normalize(s.now())
	end := today.AddDate(0, 0, 7*weeks)

	upcoming := make([]ScheduledReminder, 0)
	for _, reminder := range reminders {
		anchor, rule, ok, err := s.parseStored(reminder)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		next, found := recurrence.NextOccurrence(anchor, rule, today)
		if !found || next.After(end) {
			continue
		}
		upcoming = append(upcoming, schedule(reminder, next))
	}

	slices.SortStableFunc(upcoming, func(a, b ScheduledReminder) int {
		return cmp.Compare(a.DisplayDate, b.DisplayDate)
	})
	return upcoming, nil
}

// Projected 展开区间 [start, end] 内所有提醒的全部发生日期。
// 同一提醒内部按时间顺序输出，不同提醒之间不保证顺序。
func (s *ReminderService) Projected(start, end time.Time) ([]ScheduledReminder, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end before start", ErrInvalidInput)
	}

	reminders, err := s.List()
	if err != nil {
		return nil, err
	}

	projected := make([]ScheduledReminder, 0)
	for _, reminder := range reminders {
		anchor, rule, ok, err := s.parseStored(reminder)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		for _, date := range recurrence.Project(anchor, rule, start, end) {
			projected = append(projected, schedule(reminder, date))
		}
	}
	return projected, nil
}

// Calendar 展开从去年 1 月 1 日到明年 12 月 31 日的全部发生日期，按展示日期排序
func (s *ReminderService) Calendar() ([]ScheduledReminder, error) {
	today := recurrence.Normalize(s.now())
	start := time.Date(today.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(today.Year()+1, time.December, 31, 0, 0, 0, 0, time.UTC)

	projected, err := s.Projected(start, end)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(projected, func(a, b ScheduledReminder) int {
		return cmp.Compare(a.DisplayDate, b.DisplayDate)
	})
	return projected, nil
}

// parseStored 解析存储中的锚点日期与规则；宽松模式下不合法的记录返回 ok=false
func (s *ReminderService) parseStored(reminder db.Reminder) (time.Time, recurrence.Rule, bool, error) {
	anchor, dateErr := recurrence.ParseDate(reminder.Date)
	rule, ruleErr := recurrence.ParseRule(reminder.Recurrence)
	if dateErr == nil && ruleErr == nil {
		return anchor, rule, true, nil
	}

	cause := errors.Join(dateErr, ruleErr)
	if s.strict {
		return time.Time{}, "", false, fmt.Errorf("%w: reminder %s: %v", ErrMalformedRecord, reminder.ID, cause)
	}

	s.log.Warn("skipping malformed reminder",
		zap.String("id", reminder.ID),
		zap.String("date", reminder.Date),
		zap.String("recurrence", reminder.Recurrence),
		zap.Error(cause),
	)
	return time.Time{}, "", false, nil
}

func schedule(reminder db.Reminder, date time.Time) ScheduledReminder {
	return ScheduledReminder{Reminder: reminder, DisplayDate: recurrence.FormatDate(date)}
}

func validateReminderInput(input ReminderInput) (recurrence.Rule, error) {
	if strings.TrimSpace(input.Title) == "" {
		return "", fmt.Errorf("%w: reminder title is required", ErrInvalidInput)
	}

	if _, err := recurrence.ParseDate(input.Date); err != nil {
		return "", fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	if strings.TrimSpace(input.Recurrence) == "" {
		return recurrence.None, nil
	}

	rule, err := recurrence.ParseRule(input.Recurrence)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return rule, nil
}
