package service

import (
	"fmt"
	"time"

	"github.com/tip2talk/server/internal/model"
	"github.com/tip2talk/server/internal/repository"
)

// StatsService answers the dashboard queries from real data. Earlier screens
// fabricated these numbers client-side; every figure here comes from the
// ledger and chat tables.
type StatsService struct {
	transactionRepository  repository.TransactionRepository
	conversationRepository repository.ConversationRepository
	messageRepository      repository.MessageRepository
	tipRepository          repository.TipRepository
	purchaseRepository     repository.PurchaseRepository
	videoCallRepository    repository.VideoCallRepository
}

func NewStatsService(
	transactionRepository repository.TransactionRepository,
	conversationRepository repository.ConversationRepository,
	messageRepository repository.MessageRepository,
	tipRepository repository.TipRepository,
	purchaseRepository repository.PurchaseRepository,
	videoCallRepository repository.VideoCallRepository,
) *StatsService {
	return &StatsService{
		transactionRepository:  transactionRepository,
		conversationRepository: conversationRepository,
		messageRepository:      messageRepository,
		tipRepository:          tipRepository,
		purchaseRepository:     purchaseRepository,
		videoCallRepository:    videoCallRepository,
	}
}

// CreatorStats aggregates earnings, audience, and activity for a creator's
// dashboard. Monetary values are minor units.
func (s *StatsService) CreatorStats(creator *model.Profile) (*model.CreatorStats, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	monthly, err := s.transactionRepository.EarningsSince(creator.ID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly earnings: %w", err)
	}

	total, err := s.transactionRepository.EarningsSince(creator.ID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to sum total earnings: %w", err)
	}

	fans, err := s.conversationRepository.CountFans(creator.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count fans: %w", err)
	}

	received, err := s.messageRepository.CountReceived(creator.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	calls, err := s.videoCallRepository.CountScheduled(creator.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count calls: %w", err)
	}

	return &model.CreatorStats{
		MonthlyEarnings:  monthly,
		TotalEarnings:    total,
		TotalFans:        fans,
		MessagesReceived: received,
		ScheduledCalls:   calls,
		TipGoal:          creator.TipGoal,
		TipReceived:      creator.TipReceived,
	}, nil
}

// FanStats aggregates a fan's dashboard numbers.
func (s *StatsService) FanStats(fanID string) (*model.FanStats, error) {
	conversations, err := s.conversationRepository.ForFan(fanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	tipCount, tipTotal, err := s.tipRepository.SentStats(fanID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum tips: %w", err)
	}

	purchases, err := s.purchaseRepository.CountForBuyer(fanID)
	if err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}

	calls, err := s.videoCallRepository.CountScheduled(fanID)
	if err != nil {
		return nil, fmt.Errorf("failed to count calls: %w", err)
	}

	return &model.FanStats{
		Conversations:  len(conversations),
		TipsSent:       tipCount,
		TipTotal:       tipTotal,
		MediaPurchased: purchases,
		UpcomingCalls:  calls,
	}, nil
}
