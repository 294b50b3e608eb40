package saga

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-fleetbridge/core"
)

// TaskDirectory is the slice of the remote surface the task resolver needs.
type TaskDirectory interface {
	ListServiceTasks(ctx context.Context) ([]core.ServiceTask, error)
	CreateServiceTask(ctx context.Context, name string) (core.ServiceTask, error)
}

// TaskResolver finds a service task by exact name, case-insensitively, and
// creates one when no existing task matches. No uniqueness lock is taken, so
// two concurrent first uses of a new name can both create a task.
type TaskResolver struct {
	directory TaskDirectory
	logger    core.Logger
}

func NewTaskResolver(directory TaskDirectory, logger core.Logger) (*TaskResolver, error) {
	if directory == nil {
		return nil, fmt.Errorf("saga: task directory is required")
	}
	if logger == nil {
		_, logger = glog.Resolve("saga", nil, nil)
	}
	return &TaskResolver{directory: directory, logger: logger}, nil
}

func (r *TaskResolver) Resolve(ctx context.Context, name string) (core.ServiceTask, error) {
	if r == nil {
		return core.ServiceTask{}, fmt.Errorf("saga: task resolver not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ServiceTask{}, core.ValidationError("saga: service task name is required")
	}

	existing, err := r.directory.ListServiceTasks(ctx)
	if err != nil {
		return core.ServiceTask{}, err
	}
	for _, task := range existing {
		if strings.EqualFold(strings.TrimSpace(task.Name), name) {
			return task, nil
		}
	}

	created, err := r.directory.CreateServiceTask(ctx, name)
	if err != nil {
		return core.ServiceTask{}, err
	}
	r.logger.Info("saga: service task created", "task_id", created.ID, "name", created.Name)
	return created, nil
}
