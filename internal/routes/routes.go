package routes

import (
	"net/http"

	"github.com/tip2talk/server/internal/app"
	"github.com/tip2talk/server/internal/handler"
	"github.com/tip2talk/server/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	profile := handler.NewProfileHandler(app.ProfileService)
	conversation := handler.NewConversationHandler(app.ChatService, app.ProfileService)
	message := handler.NewMessageHandler(app.ChatService)
	pay := handler.NewPaymentHandler(app.ChatService, app.PaymentService)
	payout := handler.NewPayoutHandler(app.PaymentService)
	dashboard := handler.NewDashboardHandler(app.StatsService)
	videoCall := handler.NewVideoCallHandler(app.VideoCallService)
	ws := handler.NewWSHandler(app.ChatService, app.Hub)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Check)

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("POST /api/auth/signup", rateLimiter(auth.Signup))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))

	// Public creator pages
	mux.HandleFunc("GET /api/profiles/{username}", profile.ByUsername)

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/me", middleware.RequireAuth(auth.Me))
	mux.HandleFunc("PATCH /api/me", middleware.RequireAuth(profile.Update))
	mux.HandleFunc("POST /api/me/avatar", middleware.RequireAuth(profile.SetAvatar))

	// Conversations
	mux.HandleFunc("GET /api/inbox", middleware.RequireCreator(conversation.Inbox))
	mux.HandleFunc("GET /api/conversations", middleware.RequireAuth(conversation.FanInbox))
	mux.HandleFunc("POST /api/conversations", middleware.RequireAuth(conversation.Start))
	mux.HandleFunc("GET /api/conversations/{id}", middleware.RequireAuth(conversation.Get))

	// Messages
	mux.HandleFunc("GET /api/conversations/{id}/messages", middleware.RequireAuth(message.Thread))
	mux.HandleFunc("POST /api/conversations/{id}/messages", middleware.RequireAuth(message.SendText))
	mux.HandleFunc("POST /api/conversations/{id}/media", middleware.RequireAuth(message.SendMedia))

	// Payments (rate limited)
	payLimiter := middleware.RateLimitPayment()
	mux.HandleFunc("POST /api/create-payment", payLimiter(middleware.RequireAuth(pay.Create)))
	mux.HandleFunc("GET /api/payments/{id}", middleware.RequireAuth(pay.Status))

	// Payouts
	mux.HandleFunc("POST /api/setup-creator-payout", middleware.RequireCreator(payout.Setup))
	mux.HandleFunc("GET /api/payouts/status", middleware.RequireCreator(payout.Status))

	// Dashboards
	mux.HandleFunc("GET /api/dashboard/creator", middleware.RequireCreator(dashboard.CreatorStats))
	mux.HandleFunc("GET /api/dashboard/fan", middleware.RequireAuth(dashboard.FanStats))

	// Video calls
	mux.HandleFunc("POST /api/calls", middleware.RequireAuth(videoCall.Schedule))
	mux.HandleFunc("GET /api/calls", middleware.RequireAuth(videoCall.List))
	mux.HandleFunc("PATCH /api/calls/{id}", middleware.RequireAuth(videoCall.UpdateStatus))

	// Realtime
	mux.HandleFunc("GET /ws/conversations/{id}", middleware.RequireAuth(ws.Conversation))
	mux.HandleFunc("GET /ws/inbox", middleware.RequireCreator(ws.Inbox))

	// ============================================================================
	// WEBHOOKS
	// ============================================================================

	mux.HandleFunc("POST /webhooks/payment", pay.Webhook)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
	)
}
