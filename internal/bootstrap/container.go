package bootstrap

import (
	"github.com/daybook/internal/config"
	"github.com/daybook/internal/db"
	"github.com/daybook/internal/handler"
	"github.com/daybook/internal/logger"
	"github.com/daybook/internal/service"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// BuildContainer 注册配置、日志、JSON 文档存储、各领域服务以及 HTTP 处理器
func BuildContainer() *do.Injector {
	return buildContainer(config.Load)
}

func buildContainer(load func() (config.AppConfig, error)) *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.AppConfig, error) {
		cfg, err := load()
		if err != nil {
			return nil, err
		}
		return &cfg, nil
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.AppConfig](i)
		return logger.New(cfg.LogLevel)
	})

	// stores
	do.Provide(inj, func(i *do.Injector) (*db.Stores, error) {
		cfg := do.MustInvoke[*config.AppConfig](i)
		return db.Open(cfg.DataDir)
	})

	// services
	do.Provide(inj, func(i *do.Injector) (*service.ReminderService, error) {
		cfg := do.MustInvoke[*config.AppConfig](i)
		stores := do.MustInvoke[*db.Stores](i)
		return service.NewReminderService(stores.Records, do.MustInvoke[*zap.Logger](i), cfg.StrictDates), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.TaskService, error) {
		return service.NewTaskService(do.MustInvoke[*db.Stores](i).Records), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.CommentService, error) {
		return service.NewCommentService(do.MustInvoke[*db.Stores](i).Records), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.KnowledgeService, error) {
		return service.NewKnowledgeService(do.MustInvoke[*db.Stores](i).Knowledge), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.ProjectService, error) {
		return service.NewProjectService(do.MustInvoke[*db.Stores](i).Projects), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.VaultService, error) {
		cfg := do.MustInvoke[*config.AppConfig](i)
		stores := do.MustInvoke[*db.Stores](i)
		return service.NewVaultService(stores.Vault, cfg.VaultKDFIterations, do.MustInvoke[*zap.Logger](i)), nil
	})

	// handlers
	do.Provide(inj, func(i *do.Injector) (*handler.API, error) {
		return handler.NewAPI(handler.Services{
			Reminders: do.MustInvoke[*service.ReminderService](i),
			Tasks:     do.MustInvoke[*service.TaskService](i),
			Comments:  do.MustInvoke[*service.CommentService](i),
			Knowledge: do.MustInvoke[*service.KnowledgeService](i),
			Projects:  do.MustInvoke[*service.ProjectService](i),
			Vault:     do.MustInvoke[*service.VaultService](i),
		}, do.MustInvoke[*zap.Logger](i)), nil
	})

	return inj
}
