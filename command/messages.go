// Package command exposes the mutating operations as go-command messages and
// handlers.
package command

import (
	"strings"

	"github.com/goliatone/go-fleetbridge/core"
)

const (
	TypeCreateWorkOrder    = "fleetbridge.command.work_order.create"
	TypeResolveVehicle     = "fleetbridge.command.vehicle.resolve"
	TypeSyncInspectionLink = "fleetbridge.command.inspection_link.sync"
)

type CreateWorkOrderMessage struct {
	Request core.WorkOrderRequest
}

func (CreateWorkOrderMessage) Type() string { return TypeCreateWorkOrder }

func (m CreateWorkOrderMessage) Validate() error {
	if err := m.Request.Validate(); err != nil {
		return commandWrapValidation(err, "command: invalid work order request")
	}
	return nil
}

type ResolveVehicleMessage struct {
	Identifier string
	Options    core.ResolveOptions
}

func (ResolveVehicleMessage) Type() string { return TypeResolveVehicle }

func (m ResolveVehicleMessage) Validate() error {
	if strings.TrimSpace(m.Identifier) == "" {
		return commandInvalidInputError("command: identifier is required")
	}
	return nil
}

type SyncInspectionLinkMessage struct {
	Link core.InspectionLink
}

func (SyncInspectionLinkMessage) Type() string { return TypeSyncInspectionLink }

func (m SyncInspectionLinkMessage) Validate() error {
	if err := m.Link.Validate(); err != nil {
		return commandWrapValidation(err, "command: invalid inspection link")
	}
	return nil
}
