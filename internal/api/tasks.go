package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sarathsathish07/Task-Manager-App/internal/api/middleware"
	"github.com/sarathsathish07/Task-Manager-App/internal/model"
	"github.com/sarathsathish07/Task-Manager-App/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// createTaskRequest 创建任务的请求参数。
//
// 请求体中如果带有 userId 字段会被忽略：任务归属只取会话身份。
type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo"`
}

// updateTaskRequest 更新任务的请求参数。
//
// TaskData 中为空的字段不会覆盖已有值（与既有前端的约定一致），
// Status 必须是三态枚举之一。
type updateTaskRequest struct {
	TaskData *taskFields `json:"taskData"`
	Status   string      `json:"status"`
}

type taskFields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo"`
}

// handleCreateTask 处理创建任务的请求。
//
// POST /users/create-task
func (s *Server) handleCreateTask(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User ID is missing"})
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	task := model.Task{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      model.StatusTodo,
	}
	if err := s.taskStore.CreateTask(c.Request.Context(), &task); err != nil {
		s.logger.Error("create task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "create task failed"})
		return
	}

	if metrics.TasksCreatedTotal != nil {
		metrics.TasksCreatedTotal.Inc()
	}
	c.JSON(http.StatusCreated, task)
}

// handleGetTasks 返回当前用户的任务列表。
//
// GET /users/get-tasks?search=&sort=
// search 对标题做大小写不敏感的子串匹配；
// sort 取 "title"（标题升序）或 "recent"（创建时间倒序，默认）。
func (s *Server) handleGetTasks(c *gin.Context) {
	userID := middleware.GetUserID(c)
	search := strings.TrimSpace(c.Query("search"))
	sort := c.Query("sort")
	if sort != "title" {
		sort = "recent"
	}

	tasks, err := s.taskStore.ListTasks(c.Request.Context(), userID, search, sort)
	if err != nil {
		s.logger.Error("list tasks failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching tasks"})
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// handleUpdateTask 更新任务字段或状态。
//
// PUT /users/update-task/:id
func (s *Server) handleUpdateTask(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.Status != "" && !model.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status"})
		return
	}

	task, err := s.taskStore.GetTask(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
			return
		}
		s.logger.Error("load task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "update failed"})
		return
	}

	if req.TaskData != nil {
		if req.TaskData.Title != "" {
			task.Title = req.TaskData.Title
		}
		if req.TaskData.Description != "" {
			task.Description = req.TaskData.Description
		}
		if req.TaskData.AssignedTo != "" {
			task.AssignedTo = req.TaskData.AssignedTo
		}
	}
	if req.Status != "" {
		task.Status = model.TaskStatus(req.Status)
	}

	if err := s.taskStore.SaveTask(c.Request.Context(), task); err != nil {
		s.logger.Error("update task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "update failed"})
		return
	}

	if metrics.TasksUpdatedTotal != nil {
		metrics.TasksUpdatedTotal.Inc()
	}
	c.JSON(http.StatusCreated, task)
}

// handleDeleteTask 删除任务。
//
// DELETE /users/delete-task/:id
func (s *Server) handleDeleteTask(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	rows, err := s.taskStore.DeleteTask(c.Request.Context(), id, userID)
	if err != nil {
		s.logger.Error("delete task failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "delete task failed"})
		return
	}
	if rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}

	if metrics.TasksDeletedTotal != nil {
		metrics.TasksDeletedTotal.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task removed"})
}

func parseTaskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid task id"})
		return 0, false
	}
	return uint(id), true
}

// escapeLike 转义 LIKE 模式中的通配符并统一小写，用于大小写不敏感匹配。
func escapeLike(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
