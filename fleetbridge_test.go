package fleetbridge

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/goliatone/go-fleetbridge/core"
)

type stubFleetAPI struct {
	vehicles []core.VehicleRecord
	statusID int64
	created  core.WorkOrderSnapshot
	policy   core.UploadPolicy
	uploaded core.UploadedDocument
	tasks    []core.ServiceTask
}

func (s *stubFleetAPI) ListVehicles(ctx context.Context) ([]core.VehicleRecord, error) {
	return s.vehicles, nil
}

func (s *stubFleetAPI) ResolveOpenStatusID(ctx context.Context) (int64, error) {
	return s.statusID, nil
}

func (s *stubFleetAPI) CreateWorkOrder(ctx context.Context, in core.CreateWorkOrderInput) (core.WorkOrderSnapshot, error) {
	return s.created, nil
}

func (s *stubFleetAPI) RequestUploadPolicy(ctx context.Context) (core.UploadPolicy, error) {
	return s.policy, nil
}

func (s *stubFleetAPI) UploadDocument(ctx context.Context, policy core.UploadPolicy, filename string, data []byte) (core.UploadedDocument, error) {
	return s.uploaded, nil
}

func (s *stubFleetAPI) AttachDocument(ctx context.Context, workOrderID int64, doc core.UploadedDocument) error {
	return nil
}

func (s *stubFleetAPI) ListServiceTasks(ctx context.Context) ([]core.ServiceTask, error) {
	return s.tasks, nil
}

func (s *stubFleetAPI) CreateServiceTask(ctx context.Context, name string) (core.ServiceTask, error) {
	return core.ServiceTask{ID: 31, Name: name}, nil
}

func (s *stubFleetAPI) AddLineItem(ctx context.Context, in core.AddLineItemInput) error {
	return nil
}

func (s *stubFleetAPI) BrowseURL(workOrderID int64) string {
	return fmt.Sprintf("https://secure.example.com/1/work_orders/%d", workOrderID)
}

type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, target string, data map[string]any) ([]byte, error) {
	return []byte("%PDF"), nil
}

type memoryLinkStore struct {
	links map[string]core.InspectionLink
}

func (s *memoryLinkStore) Get(ctx context.Context, inspectionID string) (core.InspectionLink, error) {
	link, ok := s.links[inspectionID]
	if !ok {
		return core.InspectionLink{}, core.ErrLinkNotFound
	}
	return link, nil
}

func (s *memoryLinkStore) Upsert(ctx context.Context, link core.InspectionLink) (core.InspectionLink, error) {
	if s.links == nil {
		s.links = map[string]core.InspectionLink{}
	}
	existing, ok := s.links[link.InspectionID]
	if ok {
		if link.InternalNumber == nil {
			link.InternalNumber = existing.InternalNumber
		}
		if link.ExternalWorkOrderID == nil {
			link.ExternalWorkOrderID = existing.ExternalWorkOrderID
		}
	}
	s.links[link.InspectionID] = link
	return link, nil
}

func defaultStubAPI() *stubFleetAPI {
	return &stubFleetAPI{
		vehicles: []core.VehicleRecord{
			{ID: 3, Name: "2010"},
			{ID: 7, Name: "1042"},
		},
		statusID: 2,
		created:  core.WorkOrderSnapshot{ID: 42, Number: "WO-42", VehicleID: 7},
		policy:   core.UploadPolicy{Policy: "pol", Signature: "sig", Path: "docs/"},
		uploaded: core.UploadedDocument{URL: "https://files.example.com/report.pdf", Name: "report.pdf"},
	}
}

func newTestService(t *testing.T, api *stubFleetAPI, links core.InspectionLinkStore) *Service {
	t.Helper()
	options := []core.Option{
		core.WithFleetAPI(api),
		core.WithDocumentRenderer(stubRenderer{}),
	}
	if links != nil {
		options = append(options, core.WithInspectionLinkStore(links))
	}
	service, err := New(context.Background(), core.Config{}, options...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func TestNewRequiresRenderer(t *testing.T) {
	_, err := New(context.Background(), core.Config{}, core.WithFleetAPI(defaultStubAPI()))
	if err == nil {
		t.Fatalf("expected error without document renderer")
	}
}

func TestCreateWorkOrderEndToEnd(t *testing.T) {
	links := &memoryLinkStore{}
	service := newTestService(t, defaultStubAPI(), links)

	outcome, err := service.CreateWorkOrder(context.Background(), core.WorkOrderRequest{
		InspectionID:    "insp-100",
		UnitIdentifier:  "1042",
		Filename:        "report.pdf",
		RenderTarget:    "inspection_report",
		ServiceTaskName: "Brake Inspection",
	})
	if err != nil {
		t.Fatalf("create work order: %v", err)
	}
	if outcome.Result == nil {
		t.Fatalf("expected result outcome, got %+v", outcome)
	}
	if outcome.Result.WorkOrderID != 42 {
		t.Fatalf("expected work order 42, got %d", outcome.Result.WorkOrderID)
	}

	link, err := service.InspectionLink(context.Background(), "insp-100")
	if err != nil {
		t.Fatalf("get link: %v", err)
	}
	if link.ExternalWorkOrderID == nil || *link.ExternalWorkOrderID != 42 {
		t.Fatalf("expected linked work order 42, got %+v", link)
	}
}

func TestCreateWorkOrderReturnsDisambiguation(t *testing.T) {
	service := newTestService(t, defaultStubAPI(), nil)

	outcome, err := service.CreateWorkOrder(context.Background(), core.WorkOrderRequest{
		InspectionID:   "insp-100",
		UnitIdentifier: "104",
		Filename:       "report.pdf",
		RenderTarget:   "inspection_report",
	})
	if err != nil {
		t.Fatalf("disambiguation must not be an error: %v", err)
	}
	if outcome.Disambiguation == nil {
		t.Fatalf("expected disambiguation outcome, got %+v", outcome)
	}
	if len(outcome.Disambiguation.Choices) != 2 {
		t.Fatalf("expected full choice list, got %+v", outcome.Disambiguation.Choices)
	}
}

func TestResolveVehicleAppliesConfiguredThreshold(t *testing.T) {
	service := newTestService(t, defaultStubAPI(), nil)

	outcome, err := service.ResolveVehicle(context.Background(), "1042", core.ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !outcome.Resolved() || *outcome.VehicleID != 7 {
		t.Fatalf("expected vehicle 7, got %+v", outcome)
	}

	partial, err := service.ResolveVehicle(context.Background(), "104", core.ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve partial: %v", err)
	}
	if partial.Resolved() {
		t.Fatalf("partial match must not resolve at the default threshold")
	}
}

func TestSyncInspectionLinkRequiresStore(t *testing.T) {
	service := newTestService(t, defaultStubAPI(), nil)

	external := int64(42)
	_, err := service.SyncInspectionLink(context.Background(), core.InspectionLink{
		InspectionID:        "insp-100",
		ExternalWorkOrderID: &external,
	})
	if err == nil {
		t.Fatalf("expected error without a configured link store")
	}
}

func TestInspectionLinkMissingReturnsNotFound(t *testing.T) {
	service := newTestService(t, defaultStubAPI(), &memoryLinkStore{})

	if _, err := service.InspectionLink(context.Background(), "insp-missing"); !errors.Is(err, core.ErrLinkNotFound) {
		t.Fatalf("expected link-not-found, got %v", err)
	}
}
