package routes

import (
	"os"
	"strings"
	"time"

	"pawcare_back_end/internal/handlers/billing"
	"pawcare_back_end/internal/handlers/booking"
	"pawcare_back_end/internal/handlers/sitter"
	"pawcare_back_end/internal/handlers/user"
	"pawcare_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// CORS : origines front autorisées via env, défaut dev local
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")

	// ---------- Auth ----------
	api.POST("/auth/register", middleware.RegisterRateLimit(), user.Register)
	api.POST("/auth/login", middleware.LoginRateLimit(), user.Login)
	api.GET("/auth/:provider", user.BeginAuth)
	api.GET("/auth/:provider/callback", user.CallbackAuth)
	api.POST("/auth/google/mobile", user.GoogleMobileLogin)
	api.POST("/auth/facebook/mobile", user.FacebookMobileLogin)

	// ---------- Webhook Stripe (signature, pas de JWT) ----------
	api.POST("/webhooks/stripe", billing.StripeWebhook)

	// ---------- Public ----------
	api.GET("/sitters/search", middleware.SearchRateLimit(), sitter.SearchSitters)
	api.GET("/sitters/:id", sitter.GetProfile)
	api.GET("/sitters/:id/offerings", sitter.GetSitterOfferings)
	api.GET("/sitters/:id/reviews", sitter.GetSitterReviews)

	// ---------- Authentifié ----------
	auth := api.Group("/")
	auth.Use(middleware.AuthRequired(), middleware.APIRateLimit())
	{
		// Profil
		auth.GET("/me", user.GetMe)
		auth.PUT("/me", user.UpdateMe)

		// Animaux
		auth.POST("/pets", user.CreatePet)
		auth.GET("/pets", user.GetMyPets)
		auth.PUT("/pets/:id", user.UpdatePet)
		auth.POST("/pets/:id/photo", user.UploadPetPhoto)
		auth.DELETE("/pets/:id", user.DeletePet)

		// Moyens de paiement
		auth.POST("/payment-methods/setup-intent", user.CreateSetupIntent)
		auth.POST("/payment-methods", user.AttachPaymentMethod)
		auth.GET("/payment-methods", user.GetMyPaymentMethods)
		auth.DELETE("/payment-methods/:id", user.DetachPaymentMethod)

		// Réservations
		auth.POST("/bookings", middleware.BookingRateLimit(), booking.CreateBooking)
		auth.GET("/bookings", booking.GetMyBookings)
		auth.GET("/bookings/:id", booking.GetBooking)
		auth.POST("/bookings/:id/transition", booking.TransitionBooking)
		auth.GET("/bookings/:id/ws", booking.BookingStatusWS)
		auth.POST("/bookings/:id/coupon", billing.ApplyCoupon)
		auth.GET("/bookings/:id/invoice", billing.GetBookingInvoice)

		// Coupons (validation côté client)
		auth.POST("/coupons/validate", billing.ValidateCoupon)

		// Factures
		auth.GET("/invoices", billing.GetMyInvoices)
		auth.GET("/invoices/:id", billing.GetInvoice)
		auth.GET("/invoices/:id/pdf", billing.DownloadInvoicePDF)
		auth.POST("/invoices/:id/payment-intent", billing.CreateInvoicePaymentIntent)
		auth.POST("/invoices/:id/refund-request", billing.RequestRefund)

		// Remboursements
		auth.GET("/refunds", billing.GetMyRefunds)

		// Avis
		auth.POST("/reviews", sitter.CreateReview)
	}

	// ---------- Sitter ----------
	sitterRoutes := api.Group("/sitter")
	sitterRoutes.Use(middleware.AuthRequired(), middleware.APIRateLimit(), middleware.RequireSitter)
	{
		sitterRoutes.POST("/profile", sitter.CreateProfile)
		sitterRoutes.GET("/profile", sitter.GetMyProfile)
		sitterRoutes.PUT("/profile", sitter.UpdateProfile)
		sitterRoutes.POST("/profile/photo", sitter.UploadProfilePhoto)

		sitterRoutes.POST("/offerings", sitter.CreateOffering)
		sitterRoutes.PUT("/offerings/:id", sitter.UpdateOffering)
		sitterRoutes.DELETE("/offerings/:id", sitter.DeleteOffering)

		sitterRoutes.GET("/bookings", booking.GetSitterBookings)
	}

	// ---------- Admin ----------
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		admin.PUT("/users/:id/role", user.AssignRole)

		admin.POST("/coupons", billing.CreateCoupon)
		admin.GET("/coupons", billing.ListCoupons)
		admin.PUT("/coupons/:id", billing.UpdateCoupon)
		admin.DELETE("/coupons/:id", billing.DeleteCoupon)

		admin.POST("/platform-fees", billing.CreatePlatformFee)
		admin.GET("/platform-fees", billing.ListPlatformFees)
		admin.GET("/platform-fees/active", billing.GetActivePlatformFee)
		admin.PUT("/platform-fees/:id/deactivate", billing.DeactivatePlatformFee)

		admin.POST("/bookings/:id/invoice", billing.GenerateInvoice)
		admin.POST("/invoices/:id/send", billing.SendInvoice)
		admin.POST("/invoices/:id/payment", billing.RecordPayment)
		admin.POST("/invoices/:id/cancel", billing.CancelInvoice)

		admin.GET("/refunds", billing.GetAllRefunds)
		admin.POST("/refunds/:refundId/process", billing.ProcessRefund)
	}
}
