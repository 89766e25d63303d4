package board

import (
	"sort"
	"strings"
	"sync"

	"github.com/sarathsathish07/Task-Manager-App/internal/model"
)

// SortMode 看板任务排序方式。
type SortMode string

const (
	SortRecent SortMode = "recent" // 创建时间倒序（默认）
	SortTitle  SortMode = "title"  // 标题升序
)

// Columns 按状态划分的三列视图。
type Columns struct {
	Todo       []model.Task
	InProgress []model.Task
	Done       []model.Task
}

// Board 持有客户端本地的任务列表、搜索串与排序方式。
//
// 它是服务端数据的缓存：SetTasks 做整体刷新，Move 做乐观写入。
// Move 在本地改写前先捕获旧状态并返回，失败时用 Rollback 还原，
// 保证回滚永远有明确的目标值。
type Board struct {
	mu     sync.RWMutex
	tasks  []model.Task
	search string
	sort   SortMode
}

func New() *Board {
	return &Board{sort: SortRecent}
}

// SetTasks 用服务端返回的权威列表整体替换本地缓存。
func (b *Board) SetTasks(tasks []model.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = make([]model.Task, len(tasks))
	copy(b.tasks, tasks)
}

// SetSearch 设置标题过滤串。
func (b *Board) SetSearch(search string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.search = strings.TrimSpace(search)
}

// SetSort 设置排序方式，未知值回退为 SortRecent。
func (b *Board) SetSort(mode SortMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if mode != SortTitle {
		mode = SortRecent
	}
	b.sort = mode
}

// Search 返回当前过滤串。
func (b *Board) Search() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.search
}

// Sort 返回当前排序方式。
func (b *Board) Sort() SortMode {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sort
}

// Tasks 返回应用了搜索过滤与排序的任务视图。
func (b *Board) Tasks() []model.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()

	needle := strings.ToLower(b.search)
	out := make([]model.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		if needle != "" && !strings.Contains(strings.ToLower(t.Title), needle) {
			continue
		}
		out = append(out, t)
	}

	switch b.sort {
	case SortTitle:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

// Columns 把当前视图按状态划分为三列。
func (b *Board) Columns() Columns {
	var cols Columns
	for _, t := range b.Tasks() {
		switch t.Status {
		case model.StatusInProgress:
			cols.InProgress = append(cols.InProgress, t)
		case model.StatusDone:
			cols.Done = append(cols.Done, t)
		default:
			cols.Todo = append(cols.Todo, t)
		}
	}
	return cols
}

// Get 按 ID 查找任务。
func (b *Board) Get(id uint) (model.Task, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, t := range b.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Move 乐观地把任务改写到新状态，返回改写前的状态。
//
// 任务不存在时返回 ok=false 且不做任何改动。
func (b *Board) Move(id uint, status model.TaskStatus) (prev model.TaskStatus, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			prev = b.tasks[i].Status
			b.tasks[i].Status = status
			return prev, true
		}
	}
	return "", false
}

// Rollback 把任务还原为 Move 捕获的旧状态。
func (b *Board) Rollback(id uint, prev model.TaskStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			b.tasks[i].Status = prev
			return
		}
	}
}
