// Package resolve maps free-form unit identifiers to vehicles in the remote
// fleet directory.
package resolve

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-fleetbridge/core"
	"github.com/goliatone/go-fleetbridge/match"
)

// Service scores every vehicle in the directory against an identifier and
// accepts the best match only when it clears the minimum score. Anything
// below the bar yields the full choice list instead of a silent guess.
type Service struct {
	source   core.VehicleSource
	logger   core.Logger
	minScore int
}

type Option func(*Service)

func WithLogger(logger core.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMinScore overrides the default acceptance threshold for every call that
// does not carry its own.
func WithMinScore(score int) Option {
	return func(s *Service) {
		if score > 0 {
			s.minScore = score
		}
	}
}

func NewService(source core.VehicleSource, options ...Option) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("resolve: vehicle source is required")
	}
	service := &Service{
		source:   source,
		minScore: core.DefaultMinMatchScore,
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	if service.logger == nil {
		_, service.logger = glog.Resolve("resolve", nil, nil)
	}
	return service, nil
}

// Resolve scans the vehicle set for the identifier. When opts.Vehicles is
// non-nil the provided set is used as-is and the remote fetch is skipped.
func (s *Service) Resolve(ctx context.Context, identifier string, opts core.ResolveOptions) (core.ResolutionOutcome, error) {
	if s == nil {
		return core.ResolutionOutcome{}, fmt.Errorf("resolve: service not initialized")
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return core.ResolutionOutcome{}, core.ValidationError("resolve: identifier is required")
	}

	vehicles := opts.Vehicles
	if vehicles == nil {
		fetched, err := s.source.ListVehicles(ctx)
		if err != nil {
			return core.ResolutionOutcome{}, err
		}
		vehicles = fetched
	}

	threshold := opts.MinScore
	if threshold <= 0 {
		threshold = s.minScore
	}

	best := core.MatchResult{Score: core.ScoreNone, Reason: core.MatchReasonNone}
	bestIndex := -1
	for i, vehicle := range vehicles {
		result := match.ScoreVehicle(identifier, vehicle)
		if result.Score > best.Score {
			best = result
			bestIndex = i
		}
		if best.Score == core.ScoreExact {
			break
		}
	}

	if bestIndex >= 0 && best.Score >= threshold {
		vehicle := vehicles[bestIndex]
		s.logger.Info("resolve: vehicle matched",
			"identifier", identifier,
			"vehicle_id", vehicle.ID,
			"score", best.Score,
			"reason", string(best.Reason),
		)
		id := vehicle.ID
		return core.ResolutionOutcome{
			VehicleID: &id,
			Vehicle:   &vehicle,
			Match:     best,
		}, nil
	}

	s.logger.Warn("resolve: no vehicle cleared the threshold",
		"identifier", identifier,
		"best_score", best.Score,
		"threshold", threshold,
		"vehicle_count", len(vehicles),
	)
	return core.ResolutionOutcome{
		Match:   best,
		Choices: choices(vehicles),
	}, nil
}

func choices(vehicles []core.VehicleRecord) []core.VehicleChoice {
	out := make([]core.VehicleChoice, 0, len(vehicles))
	for _, vehicle := range vehicles {
		out = append(out, core.VehicleChoice{
			ID:    vehicle.ID,
			Label: vehicle.DisplayLabel(),
		})
	}
	return out
}
