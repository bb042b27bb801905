package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"quiz-attempt-service/internal/docstore"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/events"
)

// ProfileService keeps the users/{uid} record created on first sign-in.
type ProfileService struct {
	store     docstore.Store
	validator *validator.Validate
	events    events.Publisher
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewProfileService(store docstore.Store, validate *validator.Validate, publisher events.Publisher, logger zerolog.Logger) *ProfileService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &ProfileService{
		store:     store,
		validator: validate,
		events:    publisher,
		logger:    logger.With().Str("component", "profile_service").Logger(),
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// EnsureProfile returns the caller's profile, creating it with default
// preferences on first sign-in. An existing profile is never overwritten.
func (s *ProfileService) EnsureProfile(ctx context.Context, callerID, email, displayName string) (domain.Profile, error) {
	path, err := s.path(callerID)
	if err != nil {
		return domain.Profile{}, err
	}

	doc, err := s.store.Get(ctx, path)
	switch {
	case err == nil:
	case errors.Is(err, docstore.ErrNotFound):
		err := s.store.Set(ctx, path, docstore.Document{
			"displayName": s.clean(displayName),
			"email":       strings.TrimSpace(email),
			"preferences": preferencesToDocument(domain.DefaultPreferences()),
			"createdAt":   docstore.ServerTimestamp,
		}, docstore.CreateOnly())
		switch {
		case err == nil:
			s.logger.Info().Str("user_id", callerID).Msg("profile created")
		case errors.Is(err, docstore.ErrPreconditionFailed):
			// a concurrent sign-in created it first; keep that one
			s.logger.Debug().Str("user_id", callerID).Msg("profile already created")
		default:
			return domain.Profile{}, fmt.Errorf("create profile: %w", err)
		}
		if doc, err = s.store.Get(ctx, path); err != nil {
			return domain.Profile{}, fmt.Errorf("read profile: %w", err)
		}
	default:
		return domain.Profile{}, fmt.Errorf("read profile: %w", err)
	}

	profile := profileFromDocument(callerID, doc)
	s.events.Publish(ctx, events.Event{Kind: events.SessionStarted, UserID: callerID, At: s.now().UTC()})
	return profile, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, callerID string) (domain.Profile, error) {
	path, err := s.path(callerID)
	if err != nil {
		return domain.Profile{}, err
	}
	doc, err := s.store.Get(ctx, path)
	if errors.Is(err, docstore.ErrNotFound) {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return profileFromDocument(callerID, doc), nil
}

// UpdateProfile merges the non-nil fields of update into the caller's profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, callerID string, update domain.ProfileUpdate) (domain.Profile, error) {
	path, err := s.path(callerID)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := s.validator.Struct(update); err != nil {
		return domain.Profile{}, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if _, err := s.GetProfile(ctx, callerID); err != nil {
		return domain.Profile{}, err
	}

	patch := docstore.Document{"updatedAt": docstore.ServerTimestamp}
	if update.DisplayName != nil {
		name := s.clean(*update.DisplayName)
		if name == "" {
			return domain.Profile{}, fmt.Errorf("%w: displayName is empty", domain.ErrInvalidArgument)
		}
		patch["displayName"] = name
	}
	if update.Preferences != nil {
		p := *update.Preferences
		if p.DailyTarget < 0 || p.WeeklyTarget < 0 {
			return domain.Profile{}, fmt.Errorf("%w: targets must not be negative", domain.ErrInvalidArgument)
		}
		patch["preferences"] = preferencesToDocument(p)
	}

	if err := s.store.Set(ctx, path, patch, docstore.Merge()); err != nil {
		return domain.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	profile, err := s.GetProfile(ctx, callerID)
	if err != nil {
		return domain.Profile{}, err
	}
	s.events.Publish(ctx, events.Event{Kind: events.ProfileUpdated, UserID: callerID, Payload: profile, At: s.now().UTC()})
	return profile, nil
}

func (s *ProfileService) path(callerID string) (string, error) {
	if callerID == "" {
		return "", domain.ErrUnauthenticated
	}
	path, err := profilePath(callerID)
	if err != nil {
		return "", fmt.Errorf("%w: malformed user id", domain.ErrInvalidArgument)
	}
	return path, nil
}

// clean strips markup from user-supplied display text.
func (s *ProfileService) clean(v string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(v))
}
