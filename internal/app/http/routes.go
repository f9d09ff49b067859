package routes

import (
	"net/http"
	"strings"
	"time"

	"restaurant-app/config"
	adminapi "restaurant-app/internal/api/admin"
	authapi "restaurant-app/internal/api/auth"
	"restaurant-app/internal/api/billing"
	invitationsapi "restaurant-app/internal/api/invitations"
	kitchenapi "restaurant-app/internal/api/kitchen"
	menuapi "restaurant-app/internal/api/menu"
	ordersapi "restaurant-app/internal/api/orders"
	orgsapi "restaurant-app/internal/api/orgs"
	paymentsapi "restaurant-app/internal/api/payments"
	"restaurant-app/internal/api/plans"
	publicapi "restaurant-app/internal/api/public"
	reportsapi "restaurant-app/internal/api/reports"
	stripewebhooks "restaurant-app/internal/api/stripewebhook"
	tablesapi "restaurant-app/internal/api/tables"
	"restaurant-app/internal/api/users"
	"restaurant-app/internal/app/http/middleware"
	"restaurant-app/internal/domain/orgs"
	domainplans "restaurant-app/internal/domain/plans"
	"restaurant-app/internal/infra/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter builds the engine with the global middleware stack and all routes.
func NewRouter() *gin.Engine {
	r := gin.New()

	if config.OTelEnabled() {
		r.Use(otelgin.Middleware(config.SERVICE_NAME))
	}
	r.Use(middleware.RequestLogger(), gin.Recovery())

	secureConfig := secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		IsDevelopment:         !config.IsProduction(),
	}
	if config.IsProduction() {
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}
	r.Use(secure.New(secureConfig))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(metrics.Default.HTTPMiddleware())

	RegisterRoutes(r)
	return r
}

func corsOrigins() []string {
	var out []string
	for _, o := range strings.Split(config.CORS_ORIGIN, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		out = []string{config.APP_URL}
	}
	return out
}

func RegisterRoutes(r *gin.Engine) {
	// Stripe signs the raw body, so the webhook skips sanitization.
	r.POST("/webhook", stripewebhooks.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Default.Handler()))

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", middleware.RateLimitByIP("register", 10, time.Minute), authapi.Register)
	public.POST("/login", middleware.RateLimitByIP("login", 20, time.Minute), authapi.Login)
	public.POST("/logout", authapi.Logout)
	public.GET("/plans", plans.ListPlans)
	public.GET("/verify", authapi.VerifyEmail)
	public.POST("/resend-verification", middleware.RateLimitByIP("resend", 5, time.Minute), authapi.ResendVerification)
	public.POST("/request-password-reset", middleware.RateLimitByIP("reset", 5, time.Minute), authapi.RequestPasswordReset)
	public.POST("/reset-password", authapi.ResetPassword)

	if config.GoogleEnabled() {
		public.GET("/auth/google", authapi.GoogleStart)
		public.GET("/auth/google/callback", authapi.GoogleCallback)
	}

	public.GET("/invitations/:token", invitationsapi.PreviewInvitation)

	// Guest QR ordering
	guest := public.Group("/public")
	guest.GET("/orgs/:slug/menu", publicapi.GetMenu)
	guest.GET("/tables/:token", publicapi.GetTable)
	guest.POST("/orgs/:slug/orders",
		middleware.RateLimitByIP("public_order", config.PUBLIC_ORDER_RATE_PER_MINUTE, time.Minute),
		publicapi.CreateOrder)
	guest.GET("/orders/:code", publicapi.GetOrderStatus)

	// Authenticated
	auth := public.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", users.GetCurrentUser)
	auth.PATCH("/me", users.UpdateProfile)
	auth.POST("/change-password", authapi.ChangePassword)
	auth.POST("/invitations/:token/accept", invitationsapi.AcceptInvitation)

	auth.POST("/orgs", orgsapi.CreateOrg)
	auth.GET("/orgs", orgsapi.ListMyOrgs)

	registerOrgRoutes(auth.Group("/orgs/:orgID", middleware.LoadOrg()))

	// the stream is a GET upgrade; no body to sanitize
	stream := r.Group("/orgs/:orgID/kitchen")
	stream.Use(middleware.AuthMiddleware(), middleware.LoadOrg(),
		middleware.RequirePermission(orgs.PermKitchenView),
		middleware.RequireFeature(domainplans.FeatureKitchenDisplay))
	stream.GET("/stream", kitchenapi.Stream)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"), middleware.SanitizeAndCleanInputMiddleware())
	admin.GET("/dashboard", adminapi.GetAdminStats)
	admin.GET("/users", adminapi.ListAllUsers)
	admin.GET("/orgs", adminapi.ListOrganizations)
	admin.GET("/orgs/:id", adminapi.GetOrgDetails)
	admin.POST("/sync-plans", plans.SyncPlansFromStripe)
}

func registerOrgRoutes(org *gin.RouterGroup) {
	can := middleware.RequirePermission
	feature := middleware.RequireFeature

	org.GET("", can(orgs.PermOrgView), orgsapi.GetOrg)
	org.PATCH("", can(orgs.PermOrgManage), orgsapi.UpdateOrg)
	org.DELETE("", can(orgs.PermOrgDelete), orgsapi.DeleteOrg)

	// members
	org.GET("/members", can(orgs.PermMembersView), orgsapi.ListMembers)
	org.PATCH("/members/:userID", can(orgs.PermMembersManage), orgsapi.ChangeMemberRole)
	org.DELETE("/members/:userID", orgsapi.RemoveMember)
	org.POST("/transfer-ownership", middleware.RequireOwner(), orgsapi.TransferOwnership)

	// invitations
	org.GET("/invitations", can(orgs.PermMembersManage), invitationsapi.ListInvitations)
	org.POST("/invitations", can(orgs.PermMembersManage), invitationsapi.CreateInvitation)
	org.DELETE("/invitations/:id", can(orgs.PermMembersManage), invitationsapi.RevokeInvitation)
	org.POST("/invitations/:id/resend", can(orgs.PermMembersManage), invitationsapi.ResendInvitation)

	// billing
	bill := org.Group("/billing", middleware.RequireOwner())
	bill.GET("", billing.GetSummary)
	bill.GET("/invoices", billing.ListInvoices)
	bill.POST("/checkout", billing.CreateCheckoutSession)
	bill.POST("/portal", billing.CreateBillingPortal)
	bill.POST("/change-plan", billing.ChangePlan)
	bill.POST("/cancel-downgrade", billing.CancelDowngrade)

	// tables
	org.GET("/tables", can(orgs.PermTablesView), tablesapi.ListTables)
	org.POST("/tables", can(orgs.PermTablesManage), tablesapi.CreateTable)
	org.PATCH("/tables/:id", can(orgs.PermTablesManage), tablesapi.UpdateTable)
	org.DELETE("/tables/:id", can(orgs.PermTablesManage), tablesapi.DeleteTable)
	org.POST("/tables/:id/regenerate-qr", can(orgs.PermTablesManage), tablesapi.RegenerateQR)
	org.GET("/tables/:id/qr", can(orgs.PermTablesView), tablesapi.GetQR)

	// menu
	org.GET("/menu", can(orgs.PermMenuView), menuapi.GetFullMenu)
	org.POST("/menu/categories", can(orgs.PermMenuManage), menuapi.CreateCategory)
	org.PUT("/menu/categories/order", can(orgs.PermMenuManage), menuapi.ReorderCategories)
	org.PATCH("/menu/categories/:id", can(orgs.PermMenuManage), menuapi.UpdateCategory)
	org.DELETE("/menu/categories/:id", can(orgs.PermMenuManage), menuapi.DeleteCategory)
	org.POST("/menu/items", can(orgs.PermMenuManage), menuapi.CreateItem)
	org.PATCH("/menu/items/:id", can(orgs.PermMenuManage), menuapi.UpdateItem)
	org.PATCH("/menu/items/:id/availability", can(orgs.PermMenuManage), menuapi.SetAvailability)
	org.DELETE("/menu/items/:id", can(orgs.PermMenuManage), menuapi.DeleteItem)

	// orders; status changes are further restricted per role in the domain
	org.GET("/orders", can(orgs.PermOrdersView), ordersapi.ListOrders)
	org.POST("/orders", can(orgs.PermOrdersManage), feature(domainplans.FeaturePOS), ordersapi.CreateOrder)
	org.GET("/orders/:id", can(orgs.PermOrdersView), ordersapi.GetOrder)
	org.PATCH("/orders/:id/status", can(orgs.PermOrdersView), ordersapi.UpdateStatus)
	org.POST("/orders/:id/cancel", can(orgs.PermOrdersManage), ordersapi.CancelOrder)
	org.POST("/orders/:id/items", can(orgs.PermOrdersManage), ordersapi.AddItems)

	// payments
	org.POST("/orders/:id/payments", can(orgs.PermPaymentsManage), paymentsapi.RecordPayment)
	org.GET("/orders/:id/payments", can(orgs.PermOrdersView), paymentsapi.ListOrderPayments)
	org.GET("/payments", can(orgs.PermPaymentsManage), paymentsapi.ListPayments)

	// kitchen display
	org.GET("/kitchen/orders", can(orgs.PermKitchenView), feature(domainplans.FeatureKitchenDisplay), kitchenapi.ListActive)

	// reports
	org.GET("/reports/sales", can(orgs.PermReportsView), feature(domainplans.FeatureReports), reportsapi.GetSales)
}
