package service

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestCommentServiceAddAndLatest(t *testing.T) {
	stores := setupTestStores(t)
	tasks := NewTaskService(stores.Records)
	reminders := NewReminderService(stores.Records, nil, false)
	comments := NewCommentService(stores.Records)
	comments.now = tickingClock(time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC))

	task, err := tasks.Create(TaskInput{Title: "搬家"})
	if err != nil {
		t.Fatalf("Create task returned error: %v", err)
	}
	reminder, err := reminders.Create(ReminderInput{Title: "续签合同", Date: "2024-03-15"})
	if err != nil {
		t.Fatalf("Create reminder returned error: %v", err)
	}

	texts := []struct{ kind, id, text string }{
		{CommentTargetTask, task.ID, "1"},
		{CommentTargetReminder, reminder.ID, "2"},
		{"Task", task.ID, "3"},
		{CommentTargetReminder, reminder.ID, "4"},
		{CommentTargetTask, task.ID, "5"},
		{CommentTargetTask, task.ID, "6"},
	}
	for _, c := range texts {
		if _, err := comments.Add(c.kind, c.id, c.text); err != nil {
			t.Fatalf("Add(%s) returned error: %v", c.text, err)
		}
	}

	latest, err := comments.Latest(0)
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}
	if len(latest) != 5 {
		t.Fatalf("expected 5 comments by default, got %d", len(latest))
	}
	want := []string{"6", "5", "4", "3", "2"}
	for i, text := range want {
		if latest[i].Text != text {
			t.Fatalf("latest[%d] = %s, want %s", i, latest[i].Text, text)
		}
	}
	if latest[2].ItemType != "Reminder" || latest[2].ItemTitle != "续签合同" {
		t.Fatalf("unexpected feed entry: %+v", latest[2])
	}

	limited, err := comments.Latest(2)
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(limited))
	}
}

func TestCommentServiceRejectsUnknownTargets(t *testing.T) {
	stores := setupTestStores(t)
	comments := NewCommentService(stores.Records)

	if _, err := comments.Add("project", "x", "hi"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown type, got %v", err)
	}
	if _, err := comments.Add(CommentTargetTask, "x", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty text, got %v", err)
	}
	if _, err := comments.Add(CommentTargetTask, "missing", "hi"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := comments.Add(CommentTargetReminder, "missing", "hi"); !errors.Is(err, ErrReminderNotFound) {
		t.Fatalf("expected ErrReminderNotFound, got %v", err)
	}
}

func TestCommentServiceWrapsStorageErrors(t *testing.T) {
	stores := setupTestStores(t)
	if err := os.WriteFile(stores.Records.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to corrupt data file: %v", err)
	}

	_, err := NewCommentService(stores.Records).Add(CommentTargetTask, "t1", "hi")
	if err == nil {
		t.Fatal("expected error for unreadable data file")
	}
	if errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrInvalidInput) {
		t.Fatalf("storage error reported as %v", err)
	}
	if !strings.HasPrefix(err.Error(), "add comment: ") {
		t.Fatalf("expected add comment context, got %q", err.Error())
	}
}
