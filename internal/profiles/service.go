package profiles

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ridealong/event-carpool/internal/matching"
	"github.com/ridealong/event-carpool/pkg/common"
	"github.com/ridealong/event-carpool/pkg/eventbus"
	"github.com/ridealong/event-carpool/pkg/logger"
)

const serviceName = "matching-service"

// EventPublisher announces profile changes on the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}

// Service handles profile business logic. Config invariants (weight ranges,
// the weight sum, positive knobs) are enforced here, at save time — matching
// runs trust stored profiles and only validate per-request overrides.
type Service struct {
	repo     RepositoryInterface
	bus      EventPublisher
	baseConf matching.MatchingConfig
}

// NewService creates a new profiles service. bus may be nil; change events
// are then skipped. baseConf is the configuration used when no stored
// profile is flagged default.
func NewService(repo RepositoryInterface, bus EventPublisher, baseConf matching.MatchingConfig) *Service {
	return &Service{repo: repo, bus: bus, baseConf: baseConf}
}

// Create validates and stores a new profile.
func (s *Service) Create(ctx context.Context, req *CreateProfileRequest) (*Profile, error) {
	if err := req.Config.Validate(); err != nil {
		return nil, common.NewValidationError(err.Error(), err)
	}
	if _, err := s.repo.GetByName(ctx, req.Name); err == nil {
		return nil, common.NewConflictError("a profile with this name already exists", nil)
	} else if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	if req.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return nil, err
		}
	}

	p := &Profile{
		Name:      req.Name,
		Config:    req.Config,
		IsDefault: req.IsDefault,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.publishChange(ctx, eventbus.SubjectProfileCreated, p)
	return p, nil
}

// Get returns a profile by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, common.NewNotFoundError("profile not found", err)
	}
	return p, err
}

// List returns all stored profiles.
func (s *Service) List(ctx context.Context) ([]*Profile, error) {
	return s.repo.List(ctx)
}

// Update validates and replaces a profile's contents.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*Profile, error) {
	if err := req.Config.Validate(); err != nil {
		return nil, common.NewValidationError(err.Error(), err)
	}

	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, common.NewNotFoundError("profile not found", err)
	}
	if err != nil {
		return nil, err
	}

	if req.IsDefault && !p.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return nil, err
		}
	}

	p.Name = req.Name
	p.Config = req.Config
	p.IsDefault = req.IsDefault
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, common.NewNotFoundError("profile not found", err)
		}
		return nil, err
	}

	s.publishChange(ctx, eventbus.SubjectProfileUpdated, p)
	return p, nil
}

// Delete removes a profile.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrProfileNotFound) {
		return common.NewNotFoundError("profile not found", err)
	}
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return common.NewNotFoundError("profile not found", err)
		}
		return err
	}

	s.publishChange(ctx, eventbus.SubjectProfileDeleted, p)
	return nil
}

// EffectiveConfig resolves the base configuration for a matching run. A
// named profile wins; otherwise the stored default; otherwise the service's
// built-in configuration. Implements matching.ConfigProvider.
func (s *Service) EffectiveConfig(ctx context.Context, profileName string) (matching.MatchingConfig, error) {
	if profileName != "" {
		p, err := s.repo.GetByName(ctx, profileName)
		if errors.Is(err, ErrProfileNotFound) {
			return matching.MatchingConfig{}, common.NewNotFoundError("config profile not found", err)
		}
		if err != nil {
			return matching.MatchingConfig{}, err
		}
		return p.Config, nil
	}

	p, err := s.repo.GetDefault(ctx)
	if errors.Is(err, ErrProfileNotFound) {
		return s.baseConf, nil
	}
	if err != nil {
		return matching.MatchingConfig{}, err
	}
	return p.Config, nil
}

func (s *Service) publishChange(ctx context.Context, subject string, p *Profile) {
	if s.bus == nil {
		return
	}
	event, err := eventbus.NewEvent(subject, serviceName, eventbus.ProfileChangedData{
		ProfileID: p.ID,
		Name:      p.Name,
		IsDefault: p.IsDefault,
		ChangedAt: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.WarnContext(ctx, "failed to publish profile change event",
			zap.String("profile_id", p.ID.String()),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
