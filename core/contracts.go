package core

import (
	"context"
	"net/http"

	glog "github.com/goliatone/go-logger/glog"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// VehicleSource returns the complete remote vehicle set. Implementations
// paginate internally; a partial set is never returned.
type VehicleSource interface {
	ListVehicles(ctx context.Context) ([]VehicleRecord, error)
}

// VehicleResolver maps a user-supplied identifier to zero-or-one vehicle, or
// a ranked disambiguation list.
type VehicleResolver interface {
	Resolve(ctx context.Context, identifier string, opts ResolveOptions) (ResolutionOutcome, error)
}

// ResolveOptions tunes a single resolution call. Vehicles, when non-nil,
// skips the remote directory fetch.
type ResolveOptions struct {
	Vehicles []VehicleRecord
	MinScore int
}

type CreateWorkOrderInput struct {
	VehicleID int64
	StatusID  int64
	IssuedAt  string
}

type AddLineItemInput struct {
	WorkOrderID   int64
	ServiceTaskID int64
}

// FleetAPI is the remote surface the saga consumes. Every method issues one
// blocking call; none retries.
type FleetAPI interface {
	VehicleSource
	ResolveOpenStatusID(ctx context.Context) (int64, error)
	CreateWorkOrder(ctx context.Context, in CreateWorkOrderInput) (WorkOrderSnapshot, error)
	RequestUploadPolicy(ctx context.Context) (UploadPolicy, error)
	UploadDocument(ctx context.Context, policy UploadPolicy, filename string, data []byte) (UploadedDocument, error)
	AttachDocument(ctx context.Context, workOrderID int64, doc UploadedDocument) error
	ListServiceTasks(ctx context.Context) ([]ServiceTask, error)
	CreateServiceTask(ctx context.Context, name string) (ServiceTask, error)
	AddLineItem(ctx context.Context, in AddLineItemInput) error
	BrowseURL(workOrderID int64) string
}

// DocumentRenderer is an external collaborator: it accepts a render target
// plus data and returns finished document bytes.
type DocumentRenderer interface {
	Render(ctx context.Context, target string, data map[string]any) ([]byte, error)
}

// InspectionLinkStore persists the identifiers a saga produced, keyed on
// inspection id, with keep-existing-if-incoming-null semantics per field.
type InspectionLinkStore interface {
	Get(ctx context.Context, inspectionID string) (InspectionLink, error)
	Upsert(ctx context.Context, link InspectionLink) (InspectionLink, error)
}
