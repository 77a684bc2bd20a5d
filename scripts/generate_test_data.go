package main

import (
	"fmt"
	"log"

	"github.com/daybook/internal/config"
	"github.com/daybook/internal/db"
	"github.com/daybook/internal/service"
)

// 测试数据生成器
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}

	stores, err := db.Open(cfg.DataDir)
	if err != nil {
		log.Fatal("数据目录初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	summary, err := seedDemoData(stores)
	if err != nil {
		log.Fatal("测试数据生成失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("提醒: %d 条\n", summary.reminders)
	fmt.Printf("任务: %d 条\n", summary.tasks)
	fmt.Printf("知识库: %d 条\n", summary.knowledge)
	fmt.Printf("项目: %d 个\n", summary.projects)
}

type seedSummary struct {
	reminders int
	tasks     int
	knowledge int
	projects  int
}

// seedDemoData 通过服务层写入示例数据；已有数据的数据族会被跳过
func seedDemoData(stores *db.Stores) (seedSummary, error) {
	var summary seedSummary

	reminders := service.NewReminderService(stores.Records, nil, false)
	tasks := service.NewTaskService(stores.Records)
	comments := service.NewCommentService(stores.Records)
	knowledge := service.NewKnowledgeService(stores.Knowledge)
	projects := service.NewProjectService(stores.Projects)

	n, err := createTestReminders(reminders, comments)
	if err != nil {
		return summary, err
	}
	summary.reminders = n

	if summary.tasks, err = createTestTasks(tasks, comments); err != nil {
		return summary, err
	}
	if summary.knowledge, err = createTestKnowledge(knowledge); err != nil {
		return summary, err
	}
	if summary.projects, err = createTestProjects(projects); err != nil {
		return summary, err
	}
	return summary, nil
}

// 创建测试提醒
func createTestReminders(reminders *service.ReminderService, comments *service.CommentService) (int, error) {
	existing, err := reminders.List()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		fmt.Println("提醒已存在，跳过创建")
		return 0, nil
	}

	inputs := []service.ReminderInput{
		{Title: "交房租", Description: "转账给房东", Date: "2024-01-31", Recurrence: "Monthly"},
		{Title: "周会", Description: "周一上午十点", Date: "2024-01-01", Recurrence: "Weekly"},
		{Title: "妈妈生日", Date: "2000-02-29", Recurrence: "Yearly"},
		{Title: "吃维生素", Date: "2024-01-01", Recurrence: "Daily"},
		{Title: "护照到期", Description: "提前三个月续签", Date: "2030-06-15", Recurrence: "None"},
	}

	for i, input := range inputs {
		reminder, err := reminders.Create(input)
		if err != nil {
			return i, fmt.Errorf("创建提醒 %s: %w", input.Title, err)
		}
		if input.Recurrence == "Monthly" {
			if _, err := comments.Add(service.CommentTargetReminder, reminder.ID, "二月按月末处理"); err != nil {
				return i, err
			}
		}
	}
	return len(inputs), nil
}

// 创建测试任务
func createTestTasks(tasks *service.TaskService, comments *service.CommentService) (int, error) {
	existing, err := tasks.List()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		fmt.Println("任务已存在，跳过创建")
		return 0, nil
	}

	inputs := []service.TaskInput{
		{Title: "整理发票", Description: "报销季度差旅"},
		{Title: "更新简历", Status: "In Progress"},
		{Title: "备份照片", Status: "Completed"},
	}

	for i, input := range inputs {
		task, err := tasks.Create(input)
		if err != nil {
			return i, fmt.Errorf("创建任务 %s: %w", input.Title, err)
		}
		if i == 0 {
			if _, err := comments.Add(service.CommentTargetTask, task.ID, "还差两张出租车票"); err != nil {
				return i, err
			}
		}
	}
	return len(inputs), nil
}

// 创建测试知识库条目
func createTestKnowledge(knowledge *service.KnowledgeService) (int, error) {
	existing, err := knowledge.List()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		fmt.Println("知识库已存在，跳过创建")
		return 0, nil
	}

	inputs := []service.KnowledgeInput{
		{
			Title: "Go 并发笔记",
			Data:  "# Go 并发\n\n- goroutine 很轻量\n- 用 `context` 传递取消信号\n\n```go\nctx, cancel := context.WithTimeout(ctx, time.Second)\ndefer cancel()\n```",
			URL:   "https://go.dev/doc/effective_go",
		},
		{
			Title: "家用网络",
			Data:  "| 设备 | 地址 |\n| --- | --- |\n| 路由器 | 192.168.1.1 |\n| NAS | 192.168.1.20 |",
		},
		{
			Title: "常用命令",
			Data:  "**git**: `git log --oneline --graph`\n\n**tar**: `tar czf out.tgz dir/`",
		},
	}

	for i, input := range inputs {
		if _, err := knowledge.Create(input); err != nil {
			return i, fmt.Errorf("创建知识库条目 %s: %w", input.Title, err)
		}
	}
	return len(inputs), nil
}

// 创建测试项目及多层任务
func createTestProjects(projects *service.ProjectService) (int, error) {
	existing, err := projects.List()
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		fmt.Println("项目已存在，跳过创建")
		return 0, nil
	}

	project, err := projects.Create(service.ProjectInput{
		Name:        "厨房翻新",
		Description: "橱柜、台面和水电",
		StartDate:   "2024-03-01",
		EndDate:     "2024-05-31",
	})
	if err != nil {
		return 0, err
	}

	design, err := projects.AddTask(project.ID, service.ProjectTaskInput{
		Name: "设计", StartDate: "2024-03-01", EndDate: "2024-03-20", Status: "Completed",
	})
	if err != nil {
		return 1, err
	}
	build, err := projects.AddTask(project.ID, service.ProjectTaskInput{
		Name: "施工", StartDate: "2024-03-21", EndDate: "2024-05-15", Status: "In Progress",
	})
	if err != nil {
		return 1, err
	}

	children := []service.ProjectTaskInput{
		{ParentID: build.ID, Name: "拆除旧橱柜", StartDate: "2024-03-21", EndDate: "2024-03-25", Status: "Completed"},
		{ParentID: build.ID, Name: "水电改造", StartDate: "2024-03-26", EndDate: "2024-04-10"},
		{ParentID: build.ID, Name: "安装台面", StartDate: "2024-04-20", EndDate: "2024-05-15"},
	}
	for _, child := range children {
		if _, err := projects.AddTask(project.ID, child); err != nil {
			return 1, fmt.Errorf("创建子任务 %s: %w", child.Name, err)
		}
	}

	if _, err := projects.AddTaskComment(project.ID, design.ID, "效果图已确认"); err != nil {
		return 1, err
	}
	return 1, nil
}
