package fleet

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goliatone/go-fleetbridge/core"
)

// ListServiceTasks returns a single page of existing service tasks, capped at
// the configured page size.
func (c *Client) ListServiceTasks(ctx context.Context) ([]core.ServiceTask, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.pageSize))
	payload, err := c.do(ctx, http.MethodGet, c.endpoint("/service_tasks"), query, nil, "")
	if err != nil {
		return nil, err
	}
	rows, ok := records(payload)
	if !ok {
		return nil, core.MalformedResponseError("fleet: service task listing is not a record set", nil)
	}
	tasks := make([]core.ServiceTask, 0, len(rows))
	for _, row := range rows {
		id, idOK := readInt64(row["id"])
		if !idOK {
			continue
		}
		tasks = append(tasks, core.ServiceTask{
			ID:   id,
			Name: readString(row["name"]),
		})
	}
	return tasks, nil
}

// CreateServiceTask creates a task by name. A success response without an id
// is fatal to the enclosing saga step.
func (c *Client) CreateServiceTask(ctx context.Context, name string) (core.ServiceTask, error) {
	decoded, err := c.sendJSON(ctx, http.MethodPost, "/service_tasks", map[string]any{"name": name})
	if err != nil {
		return core.ServiceTask{}, err
	}
	id, ok := readInt64(decoded["id"])
	if !ok || id == 0 {
		return core.ServiceTask{}, core.MalformedResponseError(
			"fleet: service task creation response has no id",
			map[string]any{"name": name},
		)
	}
	created := core.ServiceTask{ID: id, Name: readString(decoded["name"])}
	if created.Name == "" {
		created.Name = name
	}
	return created, nil
}
