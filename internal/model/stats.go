package model

// CreatorStats aggregates a creator's dashboard numbers from real queries.
// Monetary fields are in minor units.
type CreatorStats struct {
	MonthlyEarnings  int `json:"monthly_earnings"`
	TotalEarnings    int `json:"total_earnings"`
	TotalFans        int `json:"total_fans"`
	MessagesReceived int `json:"messages_received"`
	ScheduledCalls   int `json:"scheduled_calls"`
	TipGoal          int `json:"tip_goal"`
	TipReceived      int `json:"tip_received"`
}

// FanStats is the fan-side dashboard counterpart.
type FanStats struct {
	Conversations  int `json:"conversations"`
	TipsSent       int `json:"tips_sent"`
	TipTotal       int `json:"tip_total"`
	MediaPurchased int `json:"media_purchased"`
	UpcomingCalls  int `json:"upcoming_calls"`
}
