package fleet

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-fleetbridge/core"
)

// ListVehicles retrieves the complete remote vehicle set. It pages with the
// cursor the remote hands back; when the cursor strategy yields zero pages it
// falls back to offset paging. Both strategies stop at the configured page
// ceiling so a self-referential cursor cannot loop forever. Any failure
// discards partial results: a partial vehicle set could resolve the wrong
// vehicle.
func (c *Client) ListVehicles(ctx context.Context) ([]core.VehicleRecord, error) {
	vehicles, pages, err := c.listVehiclesByCursor(ctx)
	if err != nil {
		return nil, err
	}
	if pages == 0 {
		vehicles, err = c.listVehiclesByOffset(ctx)
		if err != nil {
			return nil, err
		}
	}
	c.logger.Info("fleet: vehicle directory fetched", "count", len(vehicles))
	return vehicles, nil
}

func (c *Client) listVehiclesByCursor(ctx context.Context) ([]core.VehicleRecord, int, error) {
	var vehicles []core.VehicleRecord
	cursor := ""
	pages := 0
	for pages < c.maxPages {
		query := url.Values{}
		query.Set("per_page", strconv.Itoa(c.pageSize))
		if cursor != "" {
			query.Set("start_cursor", cursor)
		}
		payload, err := c.do(ctx, http.MethodGet, c.endpoint("/vehicles"), query, nil, "")
		if err != nil {
			return nil, 0, err
		}
		page, ok := records(payload)
		if !ok {
			// Not a cursor-shaped response; let the caller fall back.
			return nil, 0, nil
		}
		pages++
		for _, record := range page {
			vehicles = append(vehicles, parseVehicle(record))
		}
		next := nextCursor(payload)
		if next == "" || next == cursor {
			return vehicles, pages, nil
		}
		cursor = next
	}
	return vehicles, pages, nil
}

func (c *Client) listVehiclesByOffset(ctx context.Context) ([]core.VehicleRecord, error) {
	var vehicles []core.VehicleRecord
	for page := 1; page <= c.maxPages; page++ {
		query := url.Values{}
		query.Set("per_page", strconv.Itoa(c.pageSize))
		query.Set("page", strconv.Itoa(page))
		payload, err := c.do(ctx, http.MethodGet, c.endpoint("/vehicles"), query, nil, "")
		if err != nil {
			return nil, err
		}
		batch, ok := records(payload)
		if !ok || len(batch) == 0 {
			return vehicles, nil
		}
		for _, record := range batch {
			vehicles = append(vehicles, parseVehicle(record))
		}
		if len(batch) < c.pageSize {
			return vehicles, nil
		}
	}
	return vehicles, nil
}

func nextCursor(payload []byte) string {
	decoded, err := decodeObject("/vehicles", payload)
	if err != nil {
		return ""
	}
	return readString(decoded["next_cursor"])
}

func parseVehicle(record map[string]any) core.VehicleRecord {
	vehicle := core.VehicleRecord{
		Name:         readString(record["name"]),
		ExternalID:   readString(record["external_id"]),
		Label:        readString(record["label"]),
		LicensePlate: readString(record["license_plate"]),
		UnitNumber:   readString(record["unit_number"]),
	}
	if id, ok := readInt64(record["id"]); ok {
		vehicle.ID = id
	}

	attributes := map[string]any{}
	if custom, ok := record["custom_fields"].(map[string]any); ok {
		for key, value := range custom {
			if strings.TrimSpace(key) == "" {
				continue
			}
			attributes[key] = value
		}
	}
	if len(attributes) > 0 {
		vehicle.Attributes = attributes
	}
	return vehicle
}
