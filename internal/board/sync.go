package board

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sarathsathish07/Task-Manager-App/internal/model"
)

// TaskAPI 是 Controller 依赖的服务端操作子集。
type TaskAPI interface {
	UpdateTaskStatus(ctx context.Context, id uint, status model.TaskStatus) (*model.Task, error)
	ListTasks(ctx context.Context, search, sort string) ([]model.Task, error)
}

// Controller 把本地看板状态与服务端同步。
type Controller struct {
	Board  *Board
	API    TaskAPI
	Logger *slog.Logger
}

// Refresh 从服务端拉取权威列表并刷新本地缓存。
func (c *Controller) Refresh(ctx context.Context) error {
	tasks, err := c.API.ListTasks(ctx, c.Board.Search(), string(c.Board.Sort()))
	if err != nil {
		return fmt.Errorf("refresh tasks: %w", err)
	}
	c.Board.SetTasks(tasks)
	return nil
}

// MoveTask 执行一次拖拽式状态迁移：
//
//  1. 本地乐观改写（捕获旧状态）
//  2. 发送更新请求
//  3. 成功后重新拉取权威列表；失败则回滚到捕获的旧状态
func (c *Controller) MoveTask(ctx context.Context, id uint, status model.TaskStatus) error {
	prev, ok := c.Board.Move(id, status)
	if !ok {
		return fmt.Errorf("task %d not on board", id)
	}
	if prev == status {
		return nil
	}

	if _, err := c.API.UpdateTaskStatus(ctx, id, status); err != nil {
		c.Board.Rollback(id, prev)
		return fmt.Errorf("update task status: %w", err)
	}

	// 服务端已接受改动，刷新失败只记录日志，本地保持乐观值等待下次刷新。
	if err := c.Refresh(ctx); err != nil && c.Logger != nil {
		c.Logger.Warn("refresh after move failed", slog.String("error", err.Error()))
	}
	return nil
}
