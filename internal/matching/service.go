package matching

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ridealong/event-carpool/pkg/common"
	"github.com/ridealong/event-carpool/pkg/eventbus"
	"github.com/ridealong/event-carpool/pkg/logger"
)

// serviceName tags published events with their origin.
const serviceName = "matching-service"

// ResultsStore persists finished match results, keyed by the run ID. The
// store is append-only from the service's point of view and is never read
// during a run.
type ResultsStore interface {
	Put(ctx context.Context, result *MatchResult) error
	Get(ctx context.Context, id uuid.UUID) (*MatchResult, error)
}

// ConfigProvider resolves the base configuration for a run, typically from
// a stored profile. An empty profile name means "whatever is the default".
type ConfigProvider interface {
	EffectiveConfig(ctx context.Context, profileName string) (MatchingConfig, error)
}

// EventPublisher announces run outcomes on the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}

// MatchCompletedEvent is the bus payload published after every run.
type MatchCompletedEvent struct {
	MatchID           uuid.UUID     `json:"matchId"`
	TripDirection     TripDirection `json:"tripDirection"`
	TotalPassengers   int           `json:"totalPassengers"`
	MatchedPassengers int           `json:"matchedPassengers"`
	TotalDrivers      int           `json:"totalDrivers"`
	MatchedDrivers    int           `json:"matchedDrivers"`
	UnmatchedCount    int           `json:"unmatchedCount"`
	DurationMs        int64         `json:"durationMs"`
	CompletedAt       time.Time     `json:"completedAt"`
}

// MatchFailedEvent is published when a request never reaches the engine.
type MatchFailedEvent struct {
	TripDirection TripDirection `json:"tripDirection"`
	Reason        string        `json:"reason"`
	FailedAt      time.Time     `json:"failedAt"`
}

// Service orchestrates matching runs: validation, the engine itself, reason
// attribution, persistence and event publication.
type Service struct {
	store    ResultsStore
	configs  ConfigProvider
	bus      EventPublisher
	baseConf MatchingConfig
}

// NewService creates a matching service. store, configs and bus may be nil;
// the corresponding step is skipped.
func NewService(store ResultsStore, configs ConfigProvider, bus EventPublisher, baseConf MatchingConfig) *Service {
	return &Service{
		store:    store,
		configs:  configs,
		bus:      bus,
		baseConf: baseConf,
	}
}

// Match runs one complete matching call. The computation itself is
// single-threaded and deterministic; only the generated IDs differ between
// identical runs.
func (s *Service) Match(ctx context.Context, req *MatchRequest) (*MatchResult, error) {
	if !req.TripDirection.Valid() {
		err := common.NewValidationError("tripDirection must be TO_EVENT or FROM_EVENT", nil)
		s.publishFailed(ctx, req.TripDirection, err)
		return nil, err
	}
	if req.TripDirection.Inbound() && req.EventStartTime == nil {
		err := common.NewValidationError("eventStartTime is required for trips to the event", nil)
		s.publishFailed(ctx, req.TripDirection, err)
		return nil, err
	}

	cfg, err := s.effectiveConfig(ctx, req)
	if err != nil {
		s.publishFailed(ctx, req.TripDirection, err)
		return nil, err
	}

	passengers, drivers := filterParticipants(req.Passengers, req.Drivers)
	event := EventContext{
		Coordinate: req.EventLocation,
		StartTime:  req.EventStartTime,
		EndTime:    req.EventEndTime,
		Direction:  req.TripDirection,
	}

	started := time.Now()
	mctx := NewMatcherContext(passengers, drivers, event, cfg)
	report := NewEngine(mctx).Run()

	var groups []RideGroup
	if len(passengers) > 0 {
		groups = OptimizeRoutes(mctx)
		PlanSchedules(mctx, groups)
	} else {
		groups = []RideGroup{}
	}
	elapsed := time.Since(started)

	result := s.buildResult(req, mctx, report, groups, elapsed)

	logger.InfoContext(ctx, "matching run completed",
		zap.String("match_id", result.ID.String()),
		zap.String("direction", string(result.TripDirection)),
		zap.Int("total_passengers", result.Metadata.TotalPassengers),
		zap.Int("matched_passengers", result.Metadata.MatchedPassengers),
		zap.Int("total_drivers", result.Metadata.TotalDrivers),
		zap.Int("matched_drivers", result.Metadata.MatchedDrivers),
		zap.Int64("duration_ms", result.Metadata.MatchingDurationMs),
	)
	recordRun(result.TripDirection, "completed", elapsed.Seconds())
	recordOutcome(result)

	s.persist(ctx, result)
	s.publishCompleted(ctx, result)

	return result, nil
}

// GetResult fetches a stored result by run ID.
func (s *Service) GetResult(ctx context.Context, id uuid.UUID) (*MatchResult, error) {
	if s.store == nil {
		return nil, common.NewNotFoundError("match result not found", nil)
	}
	return s.store.Get(ctx, id)
}

// EffectiveDefaultConfig exposes the configuration a request without
// profile or overrides would run with.
func (s *Service) EffectiveDefaultConfig(ctx context.Context) MatchingConfig {
	if s.configs != nil {
		if cfg, err := s.configs.EffectiveConfig(ctx, ""); err == nil {
			return cfg
		}
	}
	return s.baseConf
}

func (s *Service) effectiveConfig(ctx context.Context, req *MatchRequest) (MatchingConfig, error) {
	base := s.baseConf
	if s.configs != nil {
		resolved, err := s.configs.EffectiveConfig(ctx, req.ConfigProfile)
		if err != nil {
			return MatchingConfig{}, err
		}
		base = resolved
	} else if req.ConfigProfile != "" {
		return MatchingConfig{}, common.NewNotFoundError("config profile not found", nil)
	}

	if err := req.ConfigOverrides.Validate(); err != nil {
		return MatchingConfig{}, common.NewValidationError(err.Error(), err)
	}
	return req.ConfigOverrides.Apply(base), nil
}

// filterParticipants keeps only passengers who need a ride and drivers who
// actually offer seats. Everyone else is silently excluded before totals
// are counted.
func filterParticipants(passengers []Passenger, drivers []Driver) ([]Passenger, []Driver) {
	ps := make([]Passenger, 0, len(passengers))
	for _, p := range passengers {
		if p.NeedsRide {
			ps = append(ps, p)
		}
	}
	ds := make([]Driver, 0, len(drivers))
	for _, d := range drivers {
		if d.CanDrive && d.AvailableSeats > 0 {
			ds = append(ds, d)
		}
	}
	return ps, ds
}

func (s *Service) buildResult(req *MatchRequest, mctx *MatcherContext, report *RunReport, groups []RideGroup, elapsed time.Duration) *MatchResult {
	matchedPassengers := 0
	matchedDrivers := 0
	unmatchedDrivers := []Driver{}
	for _, d := range mctx.Drivers {
		n := len(mctx.Ledger.Assignments(d.ID))
		matchedPassengers += n
		if n > 0 {
			matchedDrivers++
		} else {
			unmatchedDrivers = append(unmatchedDrivers, d)
		}
	}

	unmatched := []UnmatchedPassenger{}
	for _, p := range mctx.Passengers {
		if !mctx.Ledger.Available(p.ID) {
			continue
		}
		reason := s.unmatchedReason(p, mctx, report)
		unmatched = append(unmatched, UnmatchedPassenger{
			Passenger:       p,
			Reason:          reason,
			SuggestedAction: SuggestedActionFor(reason),
		})
	}

	return &MatchResult{
		ID:                  uuid.New(),
		TripDirection:       req.TripDirection,
		StartLocation:       req.EventLocation,
		EventStartTime:      req.EventStartTime,
		RideGroups:          groups,
		UnmatchedPassengers: unmatched,
		UnmatchedDrivers:    unmatchedDrivers,
		Metadata: ResultMetadata{
			TotalPassengers:    len(mctx.Passengers),
			TotalDrivers:       len(mctx.Drivers),
			MatchedPassengers:  matchedPassengers,
			MatchedDrivers:     matchedDrivers,
			MatchingDurationMs: elapsed.Milliseconds(),
			AlgorithmVersion:   AlgorithmVersion,
			PriorityOrder:      append([]string(nil), mctx.Config.PriorityOrder...),
			TripDirection:      req.TripDirection,
		},
		CreatedAt: time.Now().UTC(),
	}
}

// unmatchedReason attributes the most specific reason for a passenger the
// run could not seat. The rules are checked in a fixed order so results are
// reproducible.
func (s *Service) unmatchedReason(p Passenger, mctx *MatcherContext, report *RunReport) UnmatchedReason {
	if mctx.Direction.Outbound() && p.LeavingEarly && !anyEarlyDriver(mctx.Drivers) {
		return ReasonEarlyDepartureMismatch
	}
	// No drivers at all is its own reason, not a full-seats condition.
	if len(mctx.Drivers) > 0 && mctx.Ledger.TotalRemainingSeats() == 0 {
		return ReasonNoSeatsAvailable
	}
	if mctx.Config.EnforceGenderPreference && p.GenderPreference == PreferenceSameGender &&
		!anySameGenderDriverWithSeats(p, mctx) {
		return ReasonGenderPreferenceUnmet
	}
	if mctx.Direction.Inbound() &&
		report.RejectedOnlyBy(p.ID, MatcherTiming, len(mctx.Drivers)) {
		return ReasonCannotArriveOnTime
	}
	return ReasonNoAvailableDrivers
}

func anyEarlyDriver(drivers []Driver) bool {
	for _, d := range drivers {
		if d.LeavingEarly {
			return true
		}
	}
	return false
}

func anySameGenderDriverWithSeats(p Passenger, mctx *MatcherContext) bool {
	for _, d := range mctx.Drivers {
		if genderCompatible(p, d) && mctx.Ledger.RemainingSeats(d.ID) > 0 {
			return true
		}
	}
	return false
}

// persist writes the result to the store. Storage trouble degrades to a
// warning: the caller still gets their result.
func (s *Service) persist(ctx context.Context, result *MatchResult) {
	if s.store == nil {
		return
	}
	if err := s.store.Put(ctx, result); err != nil {
		logger.WarnContext(ctx, "failed to persist match result",
			zap.String("match_id", result.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) publishCompleted(ctx context.Context, result *MatchResult) {
	if s.bus == nil {
		return
	}
	event, err := eventbus.NewEvent(eventbus.SubjectMatchCompleted, serviceName, MatchCompletedEvent{
		MatchID:           result.ID,
		TripDirection:     result.TripDirection,
		TotalPassengers:   result.Metadata.TotalPassengers,
		MatchedPassengers: result.Metadata.MatchedPassengers,
		TotalDrivers:      result.Metadata.TotalDrivers,
		MatchedDrivers:    result.Metadata.MatchedDrivers,
		UnmatchedCount:    len(result.UnmatchedPassengers),
		DurationMs:        result.Metadata.MatchingDurationMs,
		CompletedAt:       result.CreatedAt,
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to build match completed event", zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, eventbus.SubjectMatchCompleted, event); err != nil {
		logger.WarnContext(ctx, "failed to publish match completed event",
			zap.String("match_id", result.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) publishFailed(ctx context.Context, direction TripDirection, cause error) {
	recordRun(direction, "validation_failed", 0)
	if s.bus == nil {
		return
	}
	event, err := eventbus.NewEvent(eventbus.SubjectMatchFailed, serviceName, MatchFailedEvent{
		TripDirection: direction,
		Reason:        cause.Error(),
		FailedAt:      time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, eventbus.SubjectMatchFailed, event); err != nil {
		logger.WarnContext(ctx, "failed to publish match failed event", zap.Error(err))
	}
}
