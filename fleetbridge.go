// Package fleetbridge turns inspection results into work orders on a remote
// fleet-maintenance service: it resolves free-form unit identifiers to
// vehicles, drives the work-order creation sequence, and records the produced
// identifiers against the inspection.
package fleetbridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-fleetbridge/command"
	"github.com/goliatone/go-fleetbridge/core"
	"github.com/goliatone/go-fleetbridge/fleet"
	"github.com/goliatone/go-fleetbridge/resolve"
	"github.com/goliatone/go-fleetbridge/saga"
)

// Service is the caller-facing facade. It owns the remote client, the
// resolution service, and the saga orchestrator, and normalizes every error
// through the configured mapper.
type Service struct {
	config       core.Config
	logger       core.Logger
	errorMapper  core.ErrorMapper
	api          core.FleetAPI
	resolver     core.VehicleResolver
	orchestrator *saga.Orchestrator
	links        core.InspectionLinkStore
}

// New resolves configuration through the builder layers and wires the
// default collaborators for anything the options did not supply. A document
// renderer must always be injected; it is an external system.
func New(ctx context.Context, runtime core.Config, options ...core.Option) (*Service, error) {
	builder := core.NewServiceBuilder(runtime, options...)
	cfg, err := builder.ResolveConfig(ctx)
	if err != nil {
		return nil, err
	}
	if builder.Renderer == nil {
		return nil, fmt.Errorf("fleetbridge: document renderer is required")
	}

	api := builder.FleetAPI
	if api == nil {
		clientConfig := fleet.FromCoreConfig(cfg)
		clientConfig.HTTPClient = builder.HTTPClient
		clientConfig.Logger = builder.Logger
		client, clientErr := fleet.NewClient(clientConfig)
		if clientErr != nil {
			return nil, clientErr
		}
		api = client
	}

	resolver := builder.Resolver
	if resolver == nil {
		service, resolveErr := resolve.NewService(api,
			resolve.WithLogger(builder.Logger),
			resolve.WithMinScore(cfg.Match.MinScore),
		)
		if resolveErr != nil {
			return nil, resolveErr
		}
		resolver = service
	}

	orchestrator, err := saga.NewOrchestrator(api, resolver, builder.Renderer,
		saga.WithLogger(builder.Logger),
		saga.WithInspectionLinkStore(builder.LinkStore),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		config:       cfg,
		logger:       builder.Logger,
		errorMapper:  builder.ErrorMapper,
		api:          api,
		resolver:     resolver,
		orchestrator: orchestrator,
		links:        builder.LinkStore,
	}, nil
}

// CreateWorkOrder runs the full creation sequence for one inspection. The
// outcome carries either the created work order or a disambiguation payload
// when the identifier does not name exactly one vehicle.
func (s *Service) CreateWorkOrder(ctx context.Context, req core.WorkOrderRequest) (core.WorkOrderOutcome, error) {
	if s == nil || s.orchestrator == nil {
		return core.WorkOrderOutcome{}, fmt.Errorf("fleetbridge: service not initialized")
	}
	if req.MinMatchScore <= 0 {
		req.MinMatchScore = s.config.Match.MinScore
	}
	outcome, err := s.orchestrator.Run(ctx, req)
	if err != nil {
		return core.WorkOrderOutcome{}, s.mapError(err)
	}
	return outcome, nil
}

// ResolveVehicle maps an identifier to zero-or-one vehicle without creating
// anything remotely.
func (s *Service) ResolveVehicle(ctx context.Context, identifier string, opts core.ResolveOptions) (core.ResolutionOutcome, error) {
	if s == nil || s.resolver == nil {
		return core.ResolutionOutcome{}, fmt.Errorf("fleetbridge: service not initialized")
	}
	if opts.MinScore <= 0 {
		opts.MinScore = s.config.Match.MinScore
	}
	outcome, err := s.resolver.Resolve(ctx, identifier, opts)
	if err != nil {
		return core.ResolutionOutcome{}, s.mapError(err)
	}
	return outcome, nil
}

// SyncInspectionLink upserts produced identifiers against an inspection.
func (s *Service) SyncInspectionLink(ctx context.Context, link core.InspectionLink) (core.InspectionLink, error) {
	if s == nil {
		return core.InspectionLink{}, fmt.Errorf("fleetbridge: service not initialized")
	}
	if s.links == nil {
		return core.InspectionLink{}, fmt.Errorf("fleetbridge: inspection link store is not configured")
	}
	stored, err := s.links.Upsert(ctx, link)
	if err != nil {
		return core.InspectionLink{}, s.mapError(err)
	}
	return stored, nil
}

// InspectionLink returns the stored link for an inspection.
func (s *Service) InspectionLink(ctx context.Context, inspectionID string) (core.InspectionLink, error) {
	if s == nil {
		return core.InspectionLink{}, fmt.Errorf("fleetbridge: service not initialized")
	}
	if s.links == nil {
		return core.InspectionLink{}, fmt.Errorf("fleetbridge: inspection link store is not configured")
	}
	link, err := s.links.Get(ctx, inspectionID)
	if err != nil {
		if errors.Is(err, core.ErrLinkNotFound) {
			return core.InspectionLink{}, err
		}
		return core.InspectionLink{}, s.mapError(err)
	}
	return link, nil
}

// Config returns the resolved effective configuration.
func (s *Service) Config() core.Config {
	if s == nil {
		return core.Config{}
	}
	return s.config
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s.errorMapper == nil {
		return err
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}

var _ command.MutatingService = (*Service)(nil)
