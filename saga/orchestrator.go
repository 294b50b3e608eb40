// Package saga drives the work-order creation sequence against the remote
// fleet service as an explicit forward-only state machine.
package saga

import (
	"context"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-fleetbridge/core"
)

const issuedAtLayout = "2006-01-02"

// Orchestrator runs one work-order saga per call. Steps advance strictly
// forward; no step is retried and no compensating action is taken. A created
// work order survives any later failure and is reported back through the
// error metadata and the inspection link store.
type Orchestrator struct {
	api      core.FleetAPI
	resolver core.VehicleResolver
	renderer core.DocumentRenderer
	tasks    *TaskResolver
	links    core.InspectionLinkStore
	logger   core.Logger
	now      func() time.Time
	newID    func() string
}

type Option func(*Orchestrator)

func WithLogger(logger core.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithInspectionLinkStore enables the persistence sync step. Without a store
// the saga still runs; produced identifiers are only returned to the caller.
func WithInspectionLinkStore(store core.InspectionLinkStore) Option {
	return func(o *Orchestrator) {
		o.links = store
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func WithInvocationIDs(newID func() string) Option {
	return func(o *Orchestrator) {
		if newID != nil {
			o.newID = newID
		}
	}
}

func NewOrchestrator(api core.FleetAPI, resolver core.VehicleResolver, renderer core.DocumentRenderer, options ...Option) (*Orchestrator, error) {
	if api == nil {
		return nil, fmt.Errorf("saga: fleet api is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("saga: vehicle resolver is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("saga: document renderer is required")
	}
	orchestrator := &Orchestrator{
		api:      api,
		resolver: resolver,
		renderer: renderer,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, option := range options {
		if option != nil {
			option(orchestrator)
		}
	}
	if orchestrator.logger == nil {
		_, orchestrator.logger = glog.Resolve("saga", nil, nil)
	}
	tasks, err := NewTaskResolver(api, orchestrator.logger)
	if err != nil {
		return nil, err
	}
	orchestrator.tasks = tasks
	return orchestrator, nil
}

// Run executes the full sequence for one request. Preconditions are checked
// before any external call. An unresolved vehicle halts with a typed
// disambiguation payload rather than an error; every other mid-sequence
// failure aborts with the state it occurred at and the identifiers produced
// so far.
func (o *Orchestrator) Run(ctx context.Context, req core.WorkOrderRequest) (core.WorkOrderOutcome, error) {
	if o == nil {
		return core.WorkOrderOutcome{}, fmt.Errorf("saga: orchestrator not initialized")
	}
	if err := req.Validate(); err != nil {
		return core.WorkOrderOutcome{}, core.ValidationError(err.Error())
	}

	state := core.WorkOrderSagaState{
		InvocationID: o.newID(),
		State:        core.SagaStateResolvingVehicle,
		StartedAt:    o.now(),
	}
	o.logger.Info("saga: started",
		"invocation_id", state.InvocationID,
		"inspection_id", req.InspectionID,
	)

	if req.VehicleID != nil {
		state.VehicleID = req.VehicleID
	} else {
		outcome, err := o.resolver.Resolve(ctx, req.UnitIdentifier, core.ResolveOptions{MinScore: req.MinMatchScore})
		if err != nil {
			return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
		}
		if !outcome.Resolved() {
			state.State = core.SagaStateNeedsDisambiguation
			o.logger.Info("saga: halted for disambiguation",
				"invocation_id", state.InvocationID,
				"identifier", req.UnitIdentifier,
				"choices", len(outcome.Choices),
			)
			return core.WorkOrderOutcome{
				Disambiguation: &core.DisambiguationNeeded{
					Identifier: req.UnitIdentifier,
					Choices:    outcome.Choices,
				},
			}, nil
		}
		state.VehicleID = outcome.VehicleID
	}

	if err := o.advance(&state); err != nil {
		return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
	}
	statusID, err := o.api.ResolveOpenStatusID(ctx)
	if err != nil {
		return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
	}
	snapshot, err := o.api.CreateWorkOrder(ctx, core.CreateWorkOrderInput{
		VehicleID: *state.VehicleID,
		StatusID:  statusID,
		IssuedAt:  o.now().Format(issuedAtLayout),
	})
	if err != nil {
		return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
	}
	state.WorkOrderID = &snapshot.ID

	if err := o.advance(&state); err != nil {
		return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
	}
	document, err := o.renderer.Render(ctx, req.RenderTarget, req.RenderData)
	if err != nil {
		return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
	}

	if err := o.advance(&state); err != nil {
		return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
	}
	policy, err := o.api.RequestUploadPolicy(ctx)
	if err != nil {
		return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
	}

	if err := o.advance(&state); err != nil {
		return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
	}
	uploaded, err := o.api.UploadDocument(ctx, policy, req.Filename, document)
	if err != nil {
		return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
	}
	state.DocumentURL = uploaded.URL

	if err := o.advance(&state); err != nil {
		return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
	}
	if err := o.api.AttachDocument(ctx, snapshot.ID, uploaded); err != nil {
		return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
	}

	if err := o.advance(&state); err != nil {
		return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
	}
	if strings.TrimSpace(req.ServiceTaskName) != "" {
		task, err := o.tasks.Resolve(ctx, req.ServiceTaskName)
		if err != nil {
			return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
		}
		state.ServiceTaskID = &task.ID

		if err := o.advance(&state); err != nil {
			return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
		}
		if err := o.api.AddLineItem(ctx, core.AddLineItemInput{
			WorkOrderID:   snapshot.ID,
			ServiceTaskID: task.ID,
		}); err != nil {
			return core.WorkOrderOutcome{}, o.abort(ctx, req, state, err)
		}
	}

	state.State = core.SagaStateDone
	o.syncLink(ctx, req, state)
	o.logger.Info("saga: completed",
		"invocation_id", state.InvocationID,
		"work_order_id", snapshot.ID,
	)
	browseURL := strings.TrimSpace(snapshot.URL)
	if browseURL == "" {
		browseURL = o.api.BrowseURL(snapshot.ID)
	}
	return core.WorkOrderOutcome{
		Result: &core.WorkOrderResult{
			WorkOrderID: snapshot.ID,
			Snapshot:    snapshot,
			BrowseURL:   browseURL,
		},
	}, nil
}

func (o *Orchestrator) advance(state *core.WorkOrderSagaState) error {
	next, err := state.State.Next()
	if err != nil {
		return err
	}
	state.State = next
	return nil
}

// abort reports a step failure with the state it occurred at. When a work
// order already exists the link is still synced so the remote record is never
// orphaned locally.
func (o *Orchestrator) abort(ctx context.Context, req core.WorkOrderRequest, state core.WorkOrderSagaState, cause error) error {
	o.logger.Error("saga: aborted",
		"invocation_id", state.InvocationID,
		"state", string(state.State),
		"error", cause,
	)
	if state.WorkOrderID != nil {
		o.syncLink(ctx, req, state)
	}
	return core.SagaAbortedError(cause, state)
}

// syncLink pushes produced identifiers to the inspection link store. Failures
// are logged, not propagated: the remote side effects already happened and
// the caller still receives the real outcome.
func (o *Orchestrator) syncLink(ctx context.Context, req core.WorkOrderRequest, state core.WorkOrderSagaState) {
	if o.links == nil {
		return
	}
	link := core.InspectionLink{InspectionID: req.InspectionID}
	if trimmed := strings.TrimSpace(req.InternalNumber); trimmed != "" {
		link.InternalNumber = &trimmed
	}
	if state.WorkOrderID != nil {
		link.ExternalWorkOrderID = state.WorkOrderID
	}
	if link.Validate() != nil {
		return
	}
	if _, err := o.links.Upsert(ctx, link); err != nil {
		o.logger.Error("saga: inspection link sync failed",
			"invocation_id", state.InvocationID,
			"inspection_id", req.InspectionID,
			"error", err,
		)
	}
}
