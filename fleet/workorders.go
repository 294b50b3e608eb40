package fleet

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-fleetbridge/core"
)

const openStatusName = "open"

// ResolveOpenStatusID looks up the work-order status named "open",
// case-insensitively, falling back to whichever status the remote marks as
// its default.
func (c *Client) ResolveOpenStatusID(ctx context.Context) (int64, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.pageSize))
	payload, err := c.do(ctx, http.MethodGet, c.endpoint("/work_order_statuses"), query, nil, "")
	if err != nil {
		return 0, err
	}
	statuses, ok := records(payload)
	if !ok {
		return 0, core.MalformedResponseError("fleet: work order status listing is not a record set", nil)
	}

	var defaultID int64
	var hasDefault bool
	for _, status := range statuses {
		id, idOK := readInt64(status["id"])
		if !idOK {
			continue
		}
		if strings.EqualFold(readString(status["name"]), openStatusName) {
			return id, nil
		}
		if !hasDefault && readBool(status["default"]) {
			defaultID = id
			hasDefault = true
		}
	}
	if hasDefault {
		return defaultID, nil
	}
	return 0, core.MalformedResponseError(
		"fleet: no open or default work order status available",
		map[string]any{"status_count": len(statuses)},
	)
}

// CreateWorkOrder issues the creation call. A success response without an id
// is fatal: nothing downstream can proceed without it.
func (c *Client) CreateWorkOrder(ctx context.Context, in core.CreateWorkOrderInput) (core.WorkOrderSnapshot, error) {
	body := map[string]any{
		"vehicle_id":           in.VehicleID,
		"work_order_status_id": in.StatusID,
		"issued_at":            in.IssuedAt,
	}
	decoded, err := c.sendJSON(ctx, http.MethodPost, "/work_orders", body)
	if err != nil {
		return core.WorkOrderSnapshot{}, err
	}
	snapshot, ok := parseWorkOrder(decoded)
	if !ok {
		return core.WorkOrderSnapshot{}, core.MalformedResponseError(
			"fleet: work order creation response has no id",
			map[string]any{"vehicle_id": in.VehicleID},
		)
	}
	c.logger.Info("fleet: work order created", "work_order_id", snapshot.ID, "vehicle_id", in.VehicleID)
	return snapshot, nil
}

// AttachDocument patches the already-created work order with the uploaded
// document's name and confirmed URL.
func (c *Client) AttachDocument(ctx context.Context, workOrderID int64, doc core.UploadedDocument) error {
	if strings.TrimSpace(doc.URL) == "" {
		return core.MalformedResponseError("fleet: document url is required for attach", nil)
	}
	body := map[string]any{
		"documents_attributes": []map[string]any{
			{
				"name":     doc.Name,
				"file_url": doc.URL,
			},
		},
	}
	path := fmt.Sprintf("/work_orders/%d", workOrderID)
	if _, err := c.sendJSON(ctx, http.MethodPatch, path, body); err != nil {
		return err
	}
	return nil
}

// AddLineItem attaches a line item referencing a service task to the work
// order.
func (c *Client) AddLineItem(ctx context.Context, in core.AddLineItemInput) error {
	body := map[string]any{
		"item_type": "ServiceTask",
		"item_id":   in.ServiceTaskID,
	}
	path := fmt.Sprintf("/work_orders/%d/work_order_line_items", in.WorkOrderID)
	if _, err := c.sendJSON(ctx, http.MethodPost, path, body); err != nil {
		return err
	}
	return nil
}

// BrowseURL builds the human-facing link for a work order. The configured
// account base URL may be empty, in which case no link can be constructed.
func (c *Client) BrowseURL(workOrderID int64) string {
	if c == nil || c.accountBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/work_orders/%d", c.accountBaseURL, workOrderID)
}

func parseWorkOrder(decoded map[string]any) (core.WorkOrderSnapshot, bool) {
	id, ok := readInt64(decoded["id"])
	if !ok || id == 0 {
		return core.WorkOrderSnapshot{}, false
	}
	snapshot := core.WorkOrderSnapshot{
		ID:     id,
		Number: readString(decoded["number"]),
		URL:    readString(decoded["url"]),
		Raw:    decoded,
	}
	if statusID, statusOK := readInt64(decoded["work_order_status_id"]); statusOK {
		snapshot.StatusID = statusID
	}
	if vehicleID, vehicleOK := readInt64(decoded["vehicle_id"]); vehicleOK {
		snapshot.VehicleID = vehicleID
	}
	return snapshot, true
}
