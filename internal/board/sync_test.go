package board

import (
	"context"
	"errors"
	"testing"

	"github.com/sarathsathish07/Task-Manager-App/internal/model"
)

type mockAPI struct {
	updateFunc  func(ctx context.Context, id uint, status model.TaskStatus) (*model.Task, error)
	listFunc    func(ctx context.Context, search, sort string) ([]model.Task, error)
	updateCalls int
	listCalls   int
}

func (m *mockAPI) UpdateTaskStatus(ctx context.Context, id uint, status model.TaskStatus) (*model.Task, error) {
	m.updateCalls++
	return m.updateFunc(ctx, id, status)
}

func (m *mockAPI) ListTasks(ctx context.Context, search, sort string) ([]model.Task, error) {
	m.listCalls++
	return m.listFunc(ctx, search, sort)
}

func TestController_MoveTaskSuccess(t *testing.T) {
	b := New()
	b.SetTasks(sampleTasks())

	api := &mockAPI{
		updateFunc: func(ctx context.Context, id uint, status model.TaskStatus) (*model.Task, error) {
			return &model.Task{ID: id, Status: status}, nil
		},
		listFunc: func(ctx context.Context, search, sort string) ([]model.Task, error) {
			// 服务端确认后的权威列表
			tasks := sampleTasks()
			tasks[0].Status = model.StatusInProgress
			return tasks, nil
		},
	}
	ctl := &Controller{Board: b, API: api}

	if err := ctl.MoveTask(context.Background(), 1, model.StatusInProgress); err != nil {
		t.Fatalf("move task: %v", err)
	}
	if api.updateCalls != 1 {
		t.Fatalf("expected one update call, got %d", api.updateCalls)
	}
	if api.listCalls != 1 {
		t.Fatalf("expected re-fetch after successful move, got %d list calls", api.listCalls)
	}
	if task, _ := b.Get(1); task.Status != model.StatusInProgress {
		t.Fatalf("board not refreshed with authoritative state")
	}
}

func TestController_MoveTaskRollbackOnFailure(t *testing.T) {
	b := New()
	b.SetTasks(sampleTasks())

	api := &mockAPI{
		updateFunc: func(ctx context.Context, id uint, status model.TaskStatus) (*model.Task, error) {
			return nil, errors.New("boom")
		},
		listFunc: func(ctx context.Context, search, sort string) ([]model.Task, error) {
			t.Fatalf("no re-fetch after failed update")
			return nil, nil
		},
	}
	ctl := &Controller{Board: b, API: api}

	err := ctl.MoveTask(context.Background(), 1, model.StatusDone)
	if err == nil {
		t.Fatalf("expected error from failed update")
	}
	if task, _ := b.Get(1); task.Status != model.StatusTodo {
		t.Fatalf("expected rollback to captured status todo, got %q", task.Status)
	}
}

func TestController_MoveTaskNoOpWhenStatusUnchanged(t *testing.T) {
	b := New()
	b.SetTasks(sampleTasks())

	api := &mockAPI{
		updateFunc: func(ctx context.Context, id uint, status model.TaskStatus) (*model.Task, error) {
			t.Fatalf("no server call for a same-status move")
			return nil, nil
		},
		listFunc: func(ctx context.Context, search, sort string) ([]model.Task, error) {
			return nil, nil
		},
	}
	ctl := &Controller{Board: b, API: api}

	if err := ctl.MoveTask(context.Background(), 1, model.StatusTodo); err != nil {
		t.Fatalf("same-status move must be a no-op, got %v", err)
	}
}

func TestController_MoveTaskUnknownID(t *testing.T) {
	b := New()
	b.SetTasks(sampleTasks())
	ctl := &Controller{Board: b, API: &mockAPI{}}

	if err := ctl.MoveTask(context.Background(), 99, model.StatusDone); err == nil {
		t.Fatalf("expected error for unknown task")
	}
}

func TestController_RefreshForwardsQueryState(t *testing.T) {
	b := New()
	b.SetSearch("report")
	b.SetSort(SortTitle)

	var gotSearch, gotSort string
	api := &mockAPI{
		listFunc: func(ctx context.Context, search, sort string) ([]model.Task, error) {
			gotSearch, gotSort = search, sort
			return sampleTasks(), nil
		},
	}
	ctl := &Controller{Board: b, API: api}

	if err := ctl.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if gotSearch != "report" || gotSort != "title" {
		t.Fatalf("query state not forwarded: search=%q sort=%q", gotSearch, gotSort)
	}
}
