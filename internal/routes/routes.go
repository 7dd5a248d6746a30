package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/bloom/internal/config"
	"github.com/example/bloom/internal/handlers"
	"github.com/example/bloom/internal/middleware"
	"github.com/example/bloom/internal/notify"
	"github.com/example/bloom/internal/otp"
)

// Register wires up all HTTP routes and returns the notification outbox so
// main can drain it on shutdown.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) *notify.Outbox {
	dispatcher := &notify.Router{
		Email: notify.NewEmailSender(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom),
		SMS:   notify.NewSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber),
	}
	outbox := notify.NewOutbox(dispatcher, cfg.OutboxSize, cfg.OutboxWorkers)
	outbox.Start()

	limiter := notify.NewSendLimiter(otp.ResendInterval, cfg.OTPDailyCap)
	otpService := otp.NewService(otp.NewGormStore(db, cfg.StoreTimeout), outbox, limiter)

	authHandler := handlers.NewAuthHandler(db, cfg, otpService, outbox)
	catalogHandler := handlers.NewCatalogHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	profileHandler := handlers.NewProfileHandler(db)
	paymentHandler := handlers.NewPaymentHandler(db)
	couponHandler := handlers.NewCouponHandler(db)
	orderHandler := handlers.NewOrderHandler(db, couponHandler, outbox)
	themeHandler := handlers.NewThemeHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/otp/send", authHandler.SendOTP)
	auth.Post("/otp/verify", authHandler.VerifyOTP)
	auth.Post("/admin/login", authHandler.AdminLogin)

	// Public catalog
	categories := api.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)

	products := api.Group("/products")
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/:idOrSlug", catalogHandler.GetProduct)

	// Public themes
	themes := api.Group("/themes")
	themes.Get("/", themeHandler.ListThemes)
	themes.Get("/active", themeHandler.GetActiveTheme)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	protected.Get("/profile/addresses", profileHandler.ListAddresses)
	protected.Post("/profile/addresses", profileHandler.CreateAddress)
	protected.Put("/profile/addresses/:id", profileHandler.UpdateAddress)
	protected.Patch("/profile/addresses/:id/set-default", profileHandler.SetDefaultAddress)
	protected.Delete("/profile/addresses/:id", profileHandler.DeleteAddress)

	protected.Get("/profile/cards", paymentHandler.ListCards)
	protected.Post("/profile/cards", paymentHandler.CreateCard)
	protected.Patch("/profile/cards/:id/set-default", paymentHandler.SetDefaultCard)
	protected.Delete("/profile/cards/:id", paymentHandler.DeleteCard)

	protected.Get("/profile/upi", paymentHandler.ListUPIHandles)
	protected.Post("/profile/upi", paymentHandler.CreateUPIHandle)
	protected.Patch("/profile/upi/:id/set-default", paymentHandler.SetDefaultUPIHandle)
	protected.Delete("/profile/upi/:id", paymentHandler.DeleteUPIHandle)

	protected.Get("/cart", cartHandler.ListCart)
	protected.Post("/cart", cartHandler.AddToCart)
	protected.Put("/cart/:id", cartHandler.UpdateCartItem)
	protected.Delete("/cart/:id", cartHandler.RemoveCartItem)
	protected.Delete("/cart", cartHandler.ClearCart)

	protected.Get("/wishlist", cartHandler.ListWishlist)
	protected.Post("/wishlist", cartHandler.AddToWishlist)
	protected.Delete("/wishlist/:productId", cartHandler.RemoveFromWishlist)

	protected.Post("/coupons/validate", couponHandler.ValidateCoupon)

	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Post("/orders/:id/cancel", orderHandler.CancelOrder)

	// Admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.RequireAdmin(db))

	admin.Post("/categories", catalogHandler.CreateCategory)
	admin.Put("/categories/:id", catalogHandler.UpdateCategory)
	admin.Delete("/categories/:id", catalogHandler.DeleteCategory)

	admin.Post("/products", catalogHandler.CreateProduct)
	admin.Put("/products/:id", catalogHandler.UpdateProduct)
	admin.Delete("/products/:id", catalogHandler.DeleteProduct)

	admin.Get("/coupons", couponHandler.ListCoupons)
	admin.Post("/coupons", couponHandler.CreateCoupon)
	admin.Put("/coupons/:id", couponHandler.UpdateCoupon)
	admin.Delete("/coupons/:id", couponHandler.DeleteCoupon)

	admin.Post("/themes", themeHandler.CreateTheme)
	admin.Put("/themes/:id", themeHandler.UpdateTheme)
	admin.Patch("/themes/:id/activate", themeHandler.ActivateTheme)
	admin.Delete("/themes/:id", themeHandler.DeleteTheme)

	admin.Patch("/orders/:id/status", orderHandler.UpdateStatus)

	return outbox
}
