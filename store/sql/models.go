package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-fleetbridge/core"
)

type inspectionLinkRecord struct {
	bun.BaseModel `bun:"table:inspection_links,alias:il"`

	ID                  string    `bun:"id,pk"`
	InspectionID        string    `bun:"inspection_id,notnull"`
	InternalNumber      *string   `bun:"internal_work_order_number"`
	ExternalWorkOrderID *int64    `bun:"external_work_order_id"`
	CreatedAt           time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt           time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *inspectionLinkRecord) toDomain() core.InspectionLink {
	if r == nil {
		return core.InspectionLink{}
	}
	link := core.InspectionLink{
		InspectionID: r.InspectionID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.InternalNumber != nil {
		value := *r.InternalNumber
		link.InternalNumber = &value
	}
	if r.ExternalWorkOrderID != nil {
		value := *r.ExternalWorkOrderID
		link.ExternalWorkOrderID = &value
	}
	return link
}
