package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verdantlane/storefront-gateway/api/controllers"
	"github.com/verdantlane/storefront-gateway/api/middleware"
	cartsvc "github.com/verdantlane/storefront-gateway/internal/cart"
	checkoutsvc "github.com/verdantlane/storefront-gateway/internal/checkout"
	contentsvc "github.com/verdantlane/storefront-gateway/internal/content"
	customersvc "github.com/verdantlane/storefront-gateway/internal/customers"
	newslettersvc "github.com/verdantlane/storefront-gateway/internal/newsletter"
	productsvc "github.com/verdantlane/storefront-gateway/internal/products"
	proxysvc "github.com/verdantlane/storefront-gateway/internal/proxy"
	regionsvc "github.com/verdantlane/storefront-gateway/internal/regions"
	"github.com/verdantlane/storefront-gateway/pkg/auth/session"
	"github.com/verdantlane/storefront-gateway/pkg/config"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

// Services bundles everything the router wires to handlers.
type Services struct {
	Proxy      proxysvc.Service
	Regions    regionsvc.Service
	Products   productsvc.Service
	Cart       cartsvc.Service
	Checkout   checkoutsvc.Service
	Customers  customersvc.Service
	Content    contentsvc.Service
	Newsletter newslettersvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	sessions *session.Manager,
	services Services,
	readiness map[string]controllers.Pinger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// The raw proxy carries no cookies and gets the permissive policy;
	// everything else is cookie-backed and stays origin-restricted.
	r.Route("/api/medusa-proxy", func(r chi.Router) {
		r.Use(middleware.ProxyCORS())
		proxyHandler := controllers.MedusaProxy(services.Proxy, logg)
		r.Get("/", proxyHandler)
		r.Post("/", proxyHandler)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS())

		r.Get("/regions", controllers.Regions(services.Regions, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(services.Products, logg))
			r.Get("/{handle}", controllers.GetProduct(services.Products, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(services.Cart, sessions, logg))
			r.Post("/add", controllers.AddCartItem(services.Cart, sessions, logg))
			r.Post("/add-cheapest", controllers.AddCheapestItem(services.Cart, sessions, logg))
			r.Post("/line-items/{lineID}", controllers.UpdateCartItem(services.Cart, sessions, logg))
			r.Delete("/line-items/{lineID}", controllers.RemoveCartItem(services.Cart, sessions, logg))
			r.Post("/region", controllers.SetCartRegion(services.Cart, sessions, logg))
			r.Post("/promotions", controllers.ApplyCartPromotions(services.Cart, sessions, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/addresses", controllers.CheckoutAddresses(services.Checkout, sessions, logg))
			r.Get("/shipping-options", controllers.CheckoutShippingOptions(services.Checkout, sessions, logg))
			r.Post("/shipping-method", controllers.CheckoutShippingMethod(services.Checkout, sessions, logg))
			r.Post("/payment-session", controllers.CheckoutPaymentSession(services.Checkout, sessions, logg))
			r.Post("/validate", controllers.CheckoutValidate(services.Checkout, sessions, logg))
			r.Post("/complete", controllers.CheckoutComplete(services.Checkout, sessions, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/login", controllers.CustomerLogin(services.Customers, sessions, logg))
			r.Post("/register", controllers.CustomerRegister(services.Customers, sessions, logg))
			r.Get("/me", controllers.CustomerMe(services.Customers, sessions, logg))
			r.Post("/logout", controllers.CustomerLogout(sessions, logg))
		})

		r.Route("/content", func(r chi.Router) {
			r.Get("/banners", controllers.ContentBanners(services.Content, logg))
			r.Get("/blog", controllers.ContentBlogPosts(services.Content, logg))
			r.Get("/blog/{slug}", controllers.ContentBlogPost(services.Content, logg))
			r.Get("/faq", controllers.ContentFAQs(services.Content, logg))
			r.Get("/collections", controllers.ContentCollections(services.Content, logg))
		})

		r.Post("/newsletter/subscribe", controllers.NewsletterSubscribe(services.Newsletter, logg))
	})

	return r
}
