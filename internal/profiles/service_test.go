package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ridealong/event-carpool/internal/matching"
	"github.com/ridealong/event-carpool/pkg/common"
	"github.com/ridealong/event-carpool/pkg/eventbus"
)

// ─── mocks ──────────────────────────────────────────────────────────────────

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, p *Profile) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func (m *mockRepo) GetByName(ctx context.Context, name string) (*Profile, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func (m *mockRepo) GetDefault(ctx context.Context) (*Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context) ([]*Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Profile), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, p *Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepo) ClearDefault(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockBus struct{ mock.Mock }

func (m *mockBus) Publish(ctx context.Context, subject string, event *eventbus.Event) error {
	args := m.Called(ctx, subject, event)
	return args.Error(0)
}

// ─── tests ──────────────────────────────────────────────────────────────────

func validConfig() matching.MatchingConfig {
	return matching.DefaultMatchingConfig()
}

func TestCreateProfile(t *testing.T) {
	repo := new(mockRepo)
	bus := new(mockBus)
	svc := NewService(repo, bus, validConfig())

	repo.On("GetByName", mock.Anything, "weekday").Return(nil, ErrProfileNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*profiles.Profile")).Return(nil)
	bus.On("Publish", mock.Anything, eventbus.SubjectProfileCreated, mock.Anything).Return(nil)

	p, err := svc.Create(context.Background(), &CreateProfileRequest{
		Name:   "weekday",
		Config: validConfig(),
	})
	require.NoError(t, err)
	assert.Equal(t, "weekday", p.Name)
	assert.NotEqual(t, uuid.Nil, p.ID)
	repo.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestCreateProfileRejectsBadWeights(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, validConfig())

	cfg := validConfig()
	cfg.Weights.Detour = 0.9 // sum now far above 1.0

	_, err := svc.Create(context.Background(), &CreateProfileRequest{Name: "broken", Config: cfg})
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.CodeValidation, appErr.ErrorCode)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProfileRejectsDuplicateName(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, validConfig())

	existing := &Profile{ID: uuid.New(), Name: "weekday", Config: validConfig()}
	repo.On("GetByName", mock.Anything, "weekday").Return(existing, nil)

	_, err := svc.Create(context.Background(), &CreateProfileRequest{Name: "weekday", Config: validConfig()})
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.CodeConflict, appErr.ErrorCode)
}

func TestCreateDefaultProfileClearsPreviousDefault(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, validConfig())

	repo.On("GetByName", mock.Anything, "new-default").Return(nil, ErrProfileNotFound)
	repo.On("ClearDefault", mock.Anything).Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Create(context.Background(), &CreateProfileRequest{
		Name:      "new-default",
		Config:    validConfig(),
		IsDefault: true,
	})
	require.NoError(t, err)
	repo.AssertCalled(t, "ClearDefault", mock.Anything)
}

func TestUpdateProfileValidatesAtSaveTime(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, validConfig())

	cfg := validConfig()
	cfg.MaxDetourMiles = -3

	_, err := svc.Update(context.Background(), uuid.New(), &UpdateProfileRequest{Name: "x", Config: cfg})
	require.Error(t, err)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestGetProfileNotFound(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, validConfig())

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, ErrProfileNotFound)

	_, err := svc.Get(context.Background(), id)
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.Code)
}

func TestDeleteProfilePublishesEvent(t *testing.T) {
	repo := new(mockRepo)
	bus := new(mockBus)
	svc := NewService(repo, bus, validConfig())

	p := &Profile{ID: uuid.New(), Name: "old", Config: validConfig()}
	repo.On("GetByID", mock.Anything, p.ID).Return(p, nil)
	repo.On("Delete", mock.Anything, p.ID).Return(nil)
	bus.On("Publish", mock.Anything, eventbus.SubjectProfileDeleted, mock.Anything).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	bus.AssertExpectations(t)
}

func TestEffectiveConfigNamedProfile(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, validConfig())

	stored := validConfig()
	stored.MaxDetourMiles = 8
	repo.On("GetByName", mock.Anything, "weekend").
		Return(&Profile{ID: uuid.New(), Name: "weekend", Config: stored}, nil)

	cfg, err := svc.EffectiveConfig(context.Background(), "weekend")
	require.NoError(t, err)
	assert.Equal(t, 8.0, cfg.MaxDetourMiles)
}

func TestEffectiveConfigMissingNamedProfile(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, validConfig())

	repo.On("GetByName", mock.Anything, "ghost").Return(nil, ErrProfileNotFound)

	_, err := svc.EffectiveConfig(context.Background(), "ghost")
	require.Error(t, err)

	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.Code)
}

func TestEffectiveConfigFallsBackToStoredDefault(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, validConfig())

	stored := validConfig()
	stored.GroupByAgeRange = 15
	repo.On("GetDefault", mock.Anything).
		Return(&Profile{ID: uuid.New(), Name: "default", Config: stored, IsDefault: true}, nil)

	cfg, err := svc.EffectiveConfig(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.GroupByAgeRange)
}

func TestEffectiveConfigFallsBackToBuiltins(t *testing.T) {
	repo := new(mockRepo)
	base := validConfig()
	base.MaxDetourMiles = 6.5
	svc := NewService(repo, nil, base)

	repo.On("GetDefault", mock.Anything).Return(nil, ErrProfileNotFound)

	cfg, err := svc.EffectiveConfig(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 6.5, cfg.MaxDetourMiles)
}
