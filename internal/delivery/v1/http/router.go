package http

import (
	"net/http"
	"time"

	_ "github.com/DRSN-tech/storefront-backend/docs" // swagger-спецификация
	"github.com/DRSN-tech/storefront-backend/internal/usecase"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

// Handler отдаёт собранный роутер для http.Server и тестов.
func (r *Router) Handler() http.Handler {
	return r.router
}

func (r *Router) Init(prUC usecase.ProductUC, userUC usecase.UserUC) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(requestLogger(r.logger))
	r.router.Use(middleware.Recoverer)

	r.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		prHandler := NewProductHandler(prUC, r.logger)
		registerProductRoutes(v1, prHandler, adminOnly(userUC, r.logger))
	})
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler, admin func(http.Handler) http.Handler) {
	router.Route("/product", func(pr chi.Router) {
		pr.Get("/latest", prHandler.getLatestProducts)
		pr.Get("/all", prHandler.searchProducts)
		pr.Get("/categories", prHandler.getCategories)
		pr.Get("/{id}", prHandler.getProduct)

		pr.Group(func(ad chi.Router) {
			ad.Use(admin)
			ad.Post("/new", prHandler.createProduct)
			ad.Get("/admin-products", prHandler.getAdminProducts)
			ad.Put("/{id}", prHandler.updateProduct)
			ad.Delete("/{id}", prHandler.deleteProduct)
		})
	})
}

// adminOnly пропускает запрос, только если query-параметр id принадлежит администратору.
func adminOnly(userUC usecase.UserUC, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := userUC.AuthorizeAdmin(r.Context(), r.URL.Query().Get("id")); err != nil {
				code, _ := ToHTTPResponse(err)
				if code >= http.StatusInternalServerError {
					log.Errorf(err, "admin check failed")
				}
				WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Debugf("%s %s -> %d (%s) request_id=%s",
				r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
		})
	}
}
