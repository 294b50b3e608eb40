package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[CreateWorkOrderMessage]    = (*CreateWorkOrderCommand)(nil)
	_ gocmd.Commander[ResolveVehicleMessage]     = (*ResolveVehicleCommand)(nil)
	_ gocmd.Commander[SyncInspectionLinkMessage] = (*SyncInspectionLinkCommand)(nil)
)
