package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidSagaTransition = errors.New("core: invalid saga state transition")
	ErrVehicleUnresolved     = errors.New("core: vehicle unresolved")
	ErrLinkNotFound          = errors.New("core: inspection link not found")
)

// VehicleRecord is owned by the remote fleet service and read-only here.
// Identifier-bearing fields are heterogeneous: some fixed columns, some loose
// entries in the Attributes map.
type VehicleRecord struct {
	ID           int64
	Name         string
	ExternalID   string
	Label        string
	LicensePlate string
	UnitNumber   string
	Attributes   map[string]any
}

// DisplayLabel returns the best human-readable handle for disambiguation
// prompts.
func (v VehicleRecord) DisplayLabel() string {
	for _, candidate := range []string{v.Name, v.Label, v.UnitNumber, v.ExternalID, v.LicensePlate} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return fmt.Sprintf("vehicle %d", v.ID)
}

type MatchReason string

const (
	MatchReasonExact        MatchReason = "exact"
	MatchReasonPrefixSuffix MatchReason = "prefix_suffix"
	MatchReasonContains     MatchReason = "contains"
	MatchReasonNone         MatchReason = "none"
)

const (
	ScoreExact        = 100
	ScorePrefixSuffix = 70
	ScoreContains     = 60
	ScoreNone         = 0

	// DefaultMinMatchScore is the acceptance threshold applied when the
	// caller does not supply one.
	DefaultMinMatchScore = 80
)

type MatchResult struct {
	Score  int
	Reason MatchReason
}

func (m MatchResult) IsExact() bool {
	return m.Reason == MatchReasonExact && m.Score == ScoreExact
}

type VehicleChoice struct {
	ID    int64
	Label string
}

// ResolutionOutcome is either resolved (VehicleID set) or carries the full
// choice list for caller-driven disambiguation. A below-threshold best match
// is never silently accepted.
type ResolutionOutcome struct {
	VehicleID *int64
	Vehicle   *VehicleRecord
	Match     MatchResult
	Choices   []VehicleChoice
}

func (o ResolutionOutcome) Resolved() bool {
	return o.VehicleID != nil
}

// SagaState enumerates the strictly ordered steps of the work-order creation
// sequence. There are no backward transitions.
type SagaState string

const (
	SagaStateResolvingVehicle     SagaState = "resolving_vehicle"
	SagaStateCreatingWorkOrder    SagaState = "creating_work_order"
	SagaStateRenderingDocument    SagaState = "rendering_document"
	SagaStateRequestingPolicy     SagaState = "requesting_upload_policy"
	SagaStateUploadingDocument    SagaState = "uploading_document"
	SagaStateAttachingDocument    SagaState = "attaching_document"
	SagaStateResolvingServiceTask SagaState = "resolving_service_task"
	SagaStateAddingLineItem       SagaState = "adding_line_item"
	SagaStateDone                 SagaState = "done"
	SagaStateFailed               SagaState = "failed"
	SagaStateNeedsDisambiguation  SagaState = "needs_disambiguation"
)

var sagaOrder = []SagaState{
	SagaStateResolvingVehicle,
	SagaStateCreatingWorkOrder,
	SagaStateRenderingDocument,
	SagaStateRequestingPolicy,
	SagaStateUploadingDocument,
	SagaStateAttachingDocument,
	SagaStateResolvingServiceTask,
	SagaStateAddingLineItem,
	SagaStateDone,
}

// Rank returns the ordinal of a state in the forward sequence, or -1 for the
// terminal failure/disambiguation outcomes which sit outside it.
func (s SagaState) Rank() int {
	for i, state := range sagaOrder {
		if state == s {
			return i
		}
	}
	return -1
}

func (s SagaState) Terminal() bool {
	return s == SagaStateDone || s == SagaStateFailed || s == SagaStateNeedsDisambiguation
}

// Next returns the successor state. Terminal states have no successor.
func (s SagaState) Next() (SagaState, error) {
	rank := s.Rank()
	if rank < 0 || s == SagaStateDone {
		return "", fmt.Errorf("%w: no transition from %s", ErrInvalidSagaTransition, s)
	}
	return sagaOrder[rank+1], nil
}

// WorkOrderSagaState is the transient per-invocation record of how far the
// sequence advanced and which external identifiers each step produced. A later
// identifier is never populated unless all prior steps succeeded.
type WorkOrderSagaState struct {
	InvocationID  string
	State         SagaState
	VehicleID     *int64
	WorkOrderID   *int64
	DocumentURL   string
	ServiceTaskID *int64
	StartedAt     time.Time
}

type WorkOrderRequest struct {
	InspectionID    string
	VehicleID       *int64
	UnitIdentifier  string
	Filename        string
	RenderTarget    string
	RenderData      map[string]any
	ServiceTaskName string
	InternalNumber  string
	MinMatchScore   int
}

// Validate covers the fail-fast preconditions: violations mean zero external
// calls are issued.
func (r WorkOrderRequest) Validate() error {
	if strings.TrimSpace(r.InspectionID) == "" {
		return fmt.Errorf("core: inspection id is required")
	}
	if strings.TrimSpace(r.Filename) == "" {
		return fmt.Errorf("core: output filename is required")
	}
	if strings.TrimSpace(r.RenderTarget) == "" {
		return fmt.Errorf("core: document render target is required")
	}
	if r.VehicleID == nil && strings.TrimSpace(r.UnitIdentifier) == "" {
		return fmt.Errorf("core: vehicle id or unit identifier is required")
	}
	return nil
}

// WorkOrderSnapshot is the remote record as returned by the fleet service.
type WorkOrderSnapshot struct {
	ID        int64
	Number    string
	StatusID  int64
	VehicleID int64
	URL       string
	Raw       map[string]any
}

type WorkOrderResult struct {
	WorkOrderID int64
	Snapshot    WorkOrderSnapshot
	BrowseURL   string
}

type DisambiguationNeeded struct {
	Identifier string
	Choices    []VehicleChoice
}

// WorkOrderOutcome carries exactly one of Result or Disambiguation; errors
// travel on the error return.
type WorkOrderOutcome struct {
	Result         *WorkOrderResult
	Disambiguation *DisambiguationNeeded
}

type UploadPolicy struct {
	Policy    string
	Signature string
	Path      string
}

type UploadedDocument struct {
	URL  string
	Name string
}

type ServiceTask struct {
	ID   int64
	Name string
}

// InspectionLink is the persisted row tying an inspection to the identifiers
// the saga produced. Each field is independently nullable and independently
// upsertable: an incoming nil never erases a stored value.
type InspectionLink struct {
	InspectionID        string
	InternalNumber      *string
	ExternalWorkOrderID *int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (l InspectionLink) Validate() error {
	if strings.TrimSpace(l.InspectionID) == "" {
		return fmt.Errorf("core: inspection id is required")
	}
	if l.InternalNumber == nil && l.ExternalWorkOrderID == nil {
		return fmt.Errorf("core: at least one link field is required")
	}
	return nil
}
