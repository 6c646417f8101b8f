package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/repository"
)

var (
	ErrPastSchedule      = errors.New("call must be scheduled in the future")
	ErrInvalidTransition = errors.New("invalid call status change")
)

type VideoCallService struct {
	videoCallRepository repository.VideoCallRepository
	profileRepository   repository.ProfileRepository
}

func NewVideoCallService(videoCallRepository repository.VideoCallRepository, profileRepository repository.ProfileRepository) *VideoCallService {
	return &VideoCallService{
		videoCallRepository: videoCallRepository,
		profileRepository:   profileRepository,
	}
}

type ScheduleCallInput struct {
	CreatorID       string
	FanID           string
	DurationMinutes int
	Price           int
	ScheduledAt     time.Time
}

func (s *VideoCallService) Schedule(in ScheduleCallInput) (*model.VideoCall, error) {
	creator, err := s.profileRepository.ByID(in.CreatorID)
	if err != nil {
		return nil, err
	}
	if !creator.IsCreator {
		return nil, ErrNotACreator
	}

	if in.DurationMinutes <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	if !in.ScheduledAt.After(time.Now()) {
		return nil, ErrPastSchedule
	}

	call := &model.VideoCall{
		CreatorID:       in.CreatorID,
		FanID:           in.FanID,
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
		ScheduledAt:     in.ScheduledAt,
		Status:          model.VideoCallStatusScheduled,
	}

	err = s.videoCallRepository.Create(call)
	if err != nil {
		return nil, fmt.Errorf("failed to create call: %w", err)
	}

	return call, nil
}

func (s *VideoCallService) ForProfile(profileID string) ([]*model.VideoCall, error) {
	return s.videoCallRepository.ForProfile(profileID)
}

// UpdateStatus moves a scheduled call to completed or cancelled. Only
// participants may change a call.
func (s *VideoCallService) UpdateStatus(callID, profileID, status string, meetingURL *string) (*model.VideoCall, error) {
	call, err := s.videoCallRepository.ByID(callID)
	if err != nil {
		return nil, err
	}

	if call.CreatorID != profileID && call.FanID != profileID {
		return nil, ErrNotParticipant
	}
	if !call.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	err = s.videoCallRepository.UpdateStatus(callID, status, meetingURL)
	if err != nil {
		return nil, err
	}

	return s.videoCallRepository.ByID(callID)
}
