package handler

import (
	"github.com/daybook/internal/logger"
	"github.com/daybook/internal/service"
	"go.uber.org/zap"
)

// API 汇总 HTTP 处理器共享的服务依赖
type API struct {
	reminders *service.ReminderService
	tasks     *service.TaskService
	comments  *service.CommentService
	knowledge *service.KnowledgeService
	projects  *service.ProjectService
	vault     *service.VaultService
	log       *zap.Logger
}

// Services 为构造 API 所需的全部服务
type Services struct {
	Reminders *service.ReminderService
	Tasks     *service.TaskService
	Comments  *service.CommentService
	Knowledge *service.KnowledgeService
	Projects  *service.ProjectService
	Vault     *service.VaultService
}

// NewAPI 使用已构造好的服务创建处理器集合
func NewAPI(services Services, log *zap.Logger) *API {
	return &API{
		reminders: services.Reminders,
		tasks:     services.Tasks,
		comments:  services.Comments,
		knowledge: services.Knowledge,
		projects:  services.Projects,
		vault:     services.Vault,
		log:       logger.OrNop(log),
	}
}
