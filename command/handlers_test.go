package command

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-fleetbridge/core"
)

type stubMutatingService struct {
	createWorkOrderFn func(ctx context.Context, req core.WorkOrderRequest) (core.WorkOrderOutcome, error)
	resolveVehicleFn  func(ctx context.Context, identifier string, opts core.ResolveOptions) (core.ResolutionOutcome, error)
	syncLinkFn        func(ctx context.Context, link core.InspectionLink) (core.InspectionLink, error)
}

func (s stubMutatingService) CreateWorkOrder(ctx context.Context, req core.WorkOrderRequest) (core.WorkOrderOutcome, error) {
	if s.createWorkOrderFn == nil {
		return core.WorkOrderOutcome{}, nil
	}
	return s.createWorkOrderFn(ctx, req)
}

func (s stubMutatingService) ResolveVehicle(ctx context.Context, identifier string, opts core.ResolveOptions) (core.ResolutionOutcome, error) {
	if s.resolveVehicleFn == nil {
		return core.ResolutionOutcome{}, nil
	}
	return s.resolveVehicleFn(ctx, identifier, opts)
}

func (s stubMutatingService) SyncInspectionLink(ctx context.Context, link core.InspectionLink) (core.InspectionLink, error) {
	if s.syncLinkFn == nil {
		return link, nil
	}
	return s.syncLinkFn(ctx, link)
}

func TestCreateWorkOrderCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.WorkOrderOutcome{Result: &core.WorkOrderResult{WorkOrderID: 42}}
	called := false

	svc := stubMutatingService{
		createWorkOrderFn: func(_ context.Context, req core.WorkOrderRequest) (core.WorkOrderOutcome, error) {
			called = true
			if req.InspectionID != "insp-100" {
				t.Fatalf("expected inspection insp-100, got %q", req.InspectionID)
			}
			return expected, nil
		},
	}

	cmd := NewCreateWorkOrderCommand(svc)
	collector := gocmd.NewResult[core.WorkOrderOutcome]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, CreateWorkOrderMessage{Request: core.WorkOrderRequest{
		InspectionID:   "insp-100",
		UnitIdentifier: "1042",
		Filename:       "report.pdf",
		RenderTarget:   "inspection_report",
	}})
	if err != nil {
		t.Fatalf("execute create work order: %v", err)
	}
	if !called {
		t.Fatalf("expected work order service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.Result == nil || result.Result.WorkOrderID != 42 {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestResolveVehicleCommand_ExecuteStoresOutcome(t *testing.T) {
	vehicleID := int64(7)
	expected := core.ResolutionOutcome{VehicleID: &vehicleID}

	svc := stubMutatingService{
		resolveVehicleFn: func(_ context.Context, identifier string, _ core.ResolveOptions) (core.ResolutionOutcome, error) {
			if identifier != "1042" {
				t.Fatalf("expected identifier 1042, got %q", identifier)
			}
			return expected, nil
		},
	}

	cmd := NewResolveVehicleCommand(svc)
	collector := gocmd.NewResult[core.ResolutionOutcome]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, ResolveVehicleMessage{Identifier: "1042"}); err != nil {
		t.Fatalf("execute resolve vehicle: %v", err)
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.VehicleID == nil || *result.VehicleID != 7 {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestSyncInspectionLinkCommand_ExecuteDelegates(t *testing.T) {
	external := int64(42)
	called := false
	svc := stubMutatingService{
		syncLinkFn: func(_ context.Context, link core.InspectionLink) (core.InspectionLink, error) {
			called = true
			if link.InspectionID != "insp-100" {
				t.Fatalf("unexpected link payload: %#v", link)
			}
			return link, nil
		},
	}

	cmd := NewSyncInspectionLinkCommand(svc)
	err := cmd.Execute(context.Background(), SyncInspectionLinkMessage{Link: core.InspectionLink{
		InspectionID:        "insp-100",
		ExternalWorkOrderID: &external,
	}})
	if err != nil {
		t.Fatalf("execute sync link: %v", err)
	}
	if !called {
		t.Fatalf("expected link service invocation")
	}
}

func TestMessages_ValidateRejectBlankRequiredFields(t *testing.T) {
	if err := (CreateWorkOrderMessage{}).Validate(); err == nil {
		t.Fatalf("expected validation error for empty work order request")
	}
	if err := (ResolveVehicleMessage{Identifier: "  "}).Validate(); err == nil {
		t.Fatalf("expected validation error for blank identifier")
	}
	if err := (SyncInspectionLinkMessage{}).Validate(); err == nil {
		t.Fatalf("expected validation error for empty link")
	}

	external := int64(42)
	valid := SyncInspectionLinkMessage{Link: core.InspectionLink{
		InspectionID:        "insp-100",
		ExternalWorkOrderID: &external,
	}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid link message, got %v", err)
	}
}

func TestCommands_RequireService(t *testing.T) {
	if err := (&CreateWorkOrderCommand{}).Execute(context.Background(), CreateWorkOrderMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
	if err := (&ResolveVehicleCommand{}).Execute(context.Background(), ResolveVehicleMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
	if err := (&SyncInspectionLinkCommand{}).Execute(context.Background(), SyncInspectionLinkMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
}
