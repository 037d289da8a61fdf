package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"hermannm.dev/budget-analytics/config"
	"hermannm.dev/budget-analytics/db"
)

type AnalyticsAPI struct {
	db     db.AnalyticsDB
	router chi.Router
	config config.API
}

func NewAnalyticsAPI(db db.AnalyticsDB, config config.API) AnalyticsAPI {
	api := AnalyticsAPI{db: db, router: chi.NewRouter(), config: config}

	limiter := newClientRateLimiter(config.RateLimit, config.RateBurst)

	api.router.Use(withRequestID)
	api.router.Use(middleware.Recoverer)
	api.router.Use(limiter.middleware)

	api.router.Route("/analytics", func(router chi.Router) {
		router.Post("/classification-periods", api.QueryClassificationPeriods)
		router.Post("/normalized-aggregates", api.QueryNormalizedAggregates)
	})

	return api
}

func (api AnalyticsAPI) ListenAndServe() error {
	return http.ListenAndServe(fmt.Sprintf(":%s", api.config.Port), api.router)
}

func (api AnalyticsAPI) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	api.router.ServeHTTP(res, req)
}
