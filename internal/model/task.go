package model

import "time"

// TaskStatus 任务在看板上所处的列。
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"       // 待办
	StatusInProgress TaskStatus = "inprogress" // 进行中
	StatusDone       TaskStatus = "done"       // 已完成
)

// ValidStatus 判断状态值是否属于三态枚举。
func ValidStatus(s string) bool {
	switch TaskStatus(s) {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task 表示一条用户拥有的工作项。
//
// UserID 在创建时写入后不再变更；任务之间没有依赖关系，删除无级联。
type Task struct {
	ID        uint      `gorm:"primaryKey" json:"id"` // 任务唯一标识
	CreatedAt time.Time `json:"createdAt"`            // 创建时间
	UpdatedAt time.Time `json:"updatedAt"`            // 更新时间

	UserID      uint       `gorm:"not null;index" json:"user"`                  // 所属用户 ID
	Title       string     `gorm:"not null" json:"title"`                       // 标题
	Description string     `json:"description"`                                 // 描述
	AssignedTo  string     `gorm:"type:varchar(191)" json:"assignedTo"`         // 负责人（自由文本标签）
	Status      TaskStatus `gorm:"type:varchar(16);default:todo" json:"status"` // todo / inprogress / done
}
