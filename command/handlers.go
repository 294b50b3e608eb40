package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-fleetbridge/core"
)

// MutatingService is the facade surface the command handlers dispatch to.
type MutatingService interface {
	CreateWorkOrder(ctx context.Context, req core.WorkOrderRequest) (core.WorkOrderOutcome, error)
	ResolveVehicle(ctx context.Context, identifier string, opts core.ResolveOptions) (core.ResolutionOutcome, error)
	SyncInspectionLink(ctx context.Context, link core.InspectionLink) (core.InspectionLink, error)
}

type CreateWorkOrderCommand struct {
	service MutatingService
}

func NewCreateWorkOrderCommand(service MutatingService) *CreateWorkOrderCommand {
	return &CreateWorkOrderCommand{service: service}
}

func (c *CreateWorkOrderCommand) Execute(ctx context.Context, msg CreateWorkOrderMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: work order service is required")
	}
	out, err := c.service.CreateWorkOrder(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ResolveVehicleCommand struct {
	service MutatingService
}

func NewResolveVehicleCommand(service MutatingService) *ResolveVehicleCommand {
	return &ResolveVehicleCommand{service: service}
}

func (c *ResolveVehicleCommand) Execute(ctx context.Context, msg ResolveVehicleMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: resolution service is required")
	}
	out, err := c.service.ResolveVehicle(ctx, msg.Identifier, msg.Options)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SyncInspectionLinkCommand struct {
	service MutatingService
}

func NewSyncInspectionLinkCommand(service MutatingService) *SyncInspectionLinkCommand {
	return &SyncInspectionLinkCommand{service: service}
}

func (c *SyncInspectionLinkCommand) Execute(ctx context.Context, msg SyncInspectionLinkMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: link service is required")
	}
	out, err := c.service.SyncInspectionLink(ctx, msg.Link)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
