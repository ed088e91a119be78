package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kidoralabs/kidora-backend/api/controllers"
	"github.com/kidoralabs/kidora-backend/api/middleware"
	addresssvc "github.com/kidoralabs/kidora-backend/internal/address"
	authsvc "github.com/kidoralabs/kidora-backend/internal/auth"
	bannersvc "github.com/kidoralabs/kidora-backend/internal/banners"
	cartsvc "github.com/kidoralabs/kidora-backend/internal/cart"
	dashboardsvc "github.com/kidoralabs/kidora-backend/internal/dashboard"
	ordersvc "github.com/kidoralabs/kidora-backend/internal/orders"
	paymentsvc "github.com/kidoralabs/kidora-backend/internal/paymentconfig"
	productsvc "github.com/kidoralabs/kidora-backend/internal/products"
	returnsvc "github.com/kidoralabs/kidora-backend/internal/returns"
	usersvc "github.com/kidoralabs/kidora-backend/internal/users"
	wishlistsvc "github.com/kidoralabs/kidora-backend/internal/wishlist"
	"github.com/kidoralabs/kidora-backend/pkg/config"
	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
	"github.com/kidoralabs/kidora-backend/pkg/metrics"
	"github.com/kidoralabs/kidora-backend/pkg/redis"
	"github.com/kidoralabs/kidora-backend/pkg/storage"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth          authsvc.Service
	Products      productsvc.Service
	Cart          cartsvc.Service
	Wishlist      wishlistsvc.Service
	Orders        ordersvc.Service
	Users         usersvc.Service
	Addresses     addresssvc.Service
	Banners       bannersvc.Service
	Returns       returnsvc.Service
	PaymentConfig paymentsvc.Service
	Dashboard     dashboardsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	services Services,
	mediaStore storage.Store,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginLimit := passthrough
	resetLimit := passthrough
	if redisClient != nil {
		loginPolicy := middleware.NewAuthRateLimitPolicy(
			"login",
			cfg.AuthRateLimit.LoginWindow,
			cfg.AuthRateLimit.LoginIPLimit,
			cfg.AuthRateLimit.LoginEmailLimit,
		)
		resetPolicy := middleware.NewAuthRateLimitPolicy(
			"reset",
			cfg.AuthRateLimit.ResetWindow,
			cfg.AuthRateLimit.ResetIPLimit,
			cfg.AuthRateLimit.ResetEmailLimit,
		)
		loginLimit = middleware.AuthRateLimit(loginPolicy, redisClient, logg)
		resetLimit = middleware.AuthRateLimit(resetPolicy, redisClient, logg)
	}

	authed := middleware.Auth(cfg.JWT, services.Auth, logg)
	admin := middleware.RequireAdmin(logg)
	fullAdmin := middleware.RequireFullAdmin(logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, logg))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Stored media is served straight off disk.
	fileServer := http.StripPrefix(cfg.Media.BaseURL, http.FileServer(http.Dir(cfg.Media.RootDir)))
	r.Get(cfg.Media.BaseURL+"/*", fileServer.ServeHTTP)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(loginLimit).Post("/register", controllers.Register(services.Auth, logg))
		r.With(loginLimit).Post("/login", controllers.Login(services.Auth, logg))
		// Logout is deliberately unauthenticated: it must succeed even
		// when the presented token no longer validates.
		r.Post("/logout", controllers.Logout(services.Auth, cfg.JWT, logg))
		r.Route("/password-reset", func(r chi.Router) {
			r.With(resetLimit).Post("/request", controllers.PasswordResetRequest(services.Auth, logg))
			r.With(resetLimit).Post("/confirm", controllers.PasswordResetConfirm(services.Auth, logg))
		})
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Use(authed)
		r.Get("/me", controllers.Profile(services.Auth, logg))
		r.Put("/me", controllers.UpdateProfile(services.Auth, logg))
		r.Put("/me/password", controllers.ChangePassword(services.Auth, logg))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(services.Products, logg))
		r.Get("/categories", controllers.ProductCategories(services.Products, logg))
		r.Get("/category-counts", controllers.ProductCategoryCounts(services.Products, logg))
		r.Get("/by-category", controllers.ProductsByCategory(services.Products, logg))
		r.Get("/search", controllers.SearchProducts(services.Products, logg))
		r.With(authed, admin).Get("/low-stock", controllers.LowStockProducts(services.Products, logg))
		r.Get("/{id}", controllers.GetProduct(services.Products, logg))
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", controllers.GetCart(services.Cart, logg))
		r.Post("/", controllers.AddCartItem(services.Cart, logg))
		r.Delete("/clear", controllers.ClearCart(services.Cart, logg))
		r.Put("/items/{itemId}", controllers.UpdateCartItem(services.Cart, logg))
		r.Delete("/items/{itemId}", controllers.RemoveCartItem(services.Cart, logg))
	})

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", controllers.GetWishlist(services.Wishlist, logg))
		r.Post("/toggle", controllers.ToggleWishlist(services.Wishlist, logg))
		r.Delete("/{productId}", controllers.RemoveWishlistItem(services.Wishlist, logg))
	})

	r.Route("/api/addresses", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", controllers.ListAddresses(services.Addresses, logg))
		r.Post("/", controllers.CreateAddress(services.Addresses, logg))
		r.Put("/{id}", controllers.UpdateAddress(services.Addresses, logg))
		r.Delete("/{id}", controllers.DeleteAddress(services.Addresses, logg))
		r.Post("/{id}/default", controllers.SetDefaultAddress(services.Addresses, logg))
	})

	r.Get("/api/hero-banners", controllers.ListHeroBanners(services.Banners, logg))

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authed)
		r.Post("/", controllers.PlaceOrder(services.Orders, logg))
		r.Get("/", controllers.ListMyOrders(services.Orders, logg))
		r.Get("/{id}", controllers.GetOrder(services.Orders, logg))
		r.Put("/{id}/status", controllers.UpdateOrderStatus(services.Orders, logg))
		r.Post("/{id}/cancel", controllers.CancelOrder(services.Orders, logg))
	})

	r.Route("/api/returns", func(r chi.Router) {
		r.Use(authed)
		r.Post("/", controllers.CreateReturn(services.Returns, logg))
		r.Get("/", controllers.ListMyReturns(services.Returns, logg))
	})

	r.Get("/api/payments/config", controllers.PublicPaymentConfig(services.PaymentConfig, logg))

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authed, admin)

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(services.Products, logg))
			r.Put("/{id}", controllers.UpdateProduct(services.Products, logg))
			r.Delete("/{id}", controllers.DeleteProduct(services.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(services.Orders, logg))
			r.Put("/{id}/status", controllers.AdminUpdateOrderStatus(services.Orders, logg))
			r.Put("/{id}/payment-status", controllers.AdminUpdatePaymentStatus(services.Orders, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(services.Users, logg))
			r.Get("/{id}", controllers.AdminGetUser(services.Users, logg))
			r.With(fullAdmin).Put("/{id}/role", controllers.AdminUpdateUserRole(services.Users, logg))
			r.With(fullAdmin).Put("/{id}/active", controllers.AdminSetUserActive(services.Users, logg))
		})

		r.Route("/hero-banners", func(r chi.Router) {
			r.Get("/", controllers.AdminListHeroBanners(services.Banners, logg))
			r.Post("/", controllers.CreateHeroBanner(services.Banners, logg))
			r.Put("/{id}", controllers.UpdateHeroBanner(services.Banners, logg))
			r.Delete("/{id}", controllers.DeleteHeroBanner(services.Banners, logg))
		})

		r.Route("/returns", func(r chi.Router) {
			r.Get("/", controllers.AdminListReturns(services.Returns, logg))
			r.Put("/{id}/status", controllers.AdminReviewReturn(services.Returns, logg))
		})

		r.Route("/payments/config", func(r chi.Router) {
			r.Get("/", controllers.AdminGetPaymentConfig(services.PaymentConfig, logg))
			r.Put("/", controllers.AdminUpdatePaymentConfig(services.PaymentConfig, logg))
		})

		r.Get("/dashboard/overview", controllers.AdminDashboardOverview(services.Dashboard, logg))

		if mediaStore != nil {
			r.Route("/media", func(r chi.Router) {
				r.Post("/upload", controllers.UploadMedia(mediaStore, cfg.Media, logg))
				r.Post("/import", controllers.ImportMedia(mediaStore, logg))
				r.Delete("/", controllers.DeleteMedia(mediaStore, logg))
			})
		}
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
