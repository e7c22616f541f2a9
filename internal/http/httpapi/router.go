package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"foodshare/internal/http/handlers"
	"foodshare/internal/middleware"
)

// Options configures the cross-cutting middleware of the router.
type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
	RateLimitBurst  int
	CountryLookup   middleware.CountryLookup
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Country(opts.CountryLookup),
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)
	if app.Metrics != nil {
		r.Use(app.Metrics.Instrument(routePattern))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)
	r.Get("/metrics", app.MetricsExport)

	auth := middleware.AuthJWT(app.Auth)

	r.Group(func(r chi.Router) {
		if opts.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, opts.RateLimitBurst))
		}

		r.Post("/users", app.UsersCreate)
		r.With(auth).Delete("/users", app.UsersDelete)
		r.Post("/sessions", app.SessionsCreate)
		r.With(auth).Delete("/sessions", app.SessionsDelete)

		r.Route("/donations", func(r chi.Router) {
			r.Route("/listings", func(r chi.Router) {
				r.Get("/", app.ListingsList)
				r.With(auth).Post("/", app.ListingsCreate)
				r.Route("/{listingID}", func(r chi.Router) {
					r.Get("/", app.ListingGet)
					r.With(auth).Patch("/", app.ListingUpdate)
					r.With(auth).Delete("/", app.ListingDelete)

					r.Get("/forms", app.FormGet)
					r.With(auth).Post("/forms", app.FormCreate)
					r.With(auth).Patch("/forms/{formID}", app.FormUpdate)
					r.With(auth).Delete("/forms/{formID}", app.FormDelete)

					r.Get("/receipts", app.ListingReceiptGet)
					r.With(auth).Post("/receipts", app.ListingReceiptCreate)
				})
			})
			r.Get("/receipts", app.ReceiptsList)
			r.Get("/receipts/{receiptID}", app.ReceiptGet)
			r.Get("/{donationID}", app.DonationGet)
		})

		r.Route("/donors", func(r chi.Router) {
			r.Get("/", app.DonorsList)
			r.With(auth).Post("/", app.DonorsCreate)
			r.Route("/{donorID}", func(r chi.Router) {
				r.Get("/", app.DonorGet)
				r.With(auth).Patch("/", app.DonorUpdate)
				r.With(auth).Delete("/", app.DonorDelete)

				r.Get("/ratings", app.RatingsGet)
				r.With(auth).Post("/ratings", app.RatingCreate)
				r.With(auth).Patch("/ratings/{donationID}", app.RatingUpdate)
				r.With(auth).Delete("/ratings/{donationID}", app.RatingDelete)

				r.Get("/impactlog", app.ImpactLogGet)
				r.With(auth).Post("/impactlog", app.ImpactRecordCreate)
				r.Get("/impactlog/{donationID}", app.ImpactRecordGet)
				r.With(auth).Patch("/impactlog/{donationID}", app.ImpactRecordUpdate)
			})
		})

		r.Route("/recipients", func(r chi.Router) {
			r.Get("/", app.RecipientsList)
			r.With(auth).Post("/", app.RecipientsCreate)
			r.Route("/{recipientID}", func(r chi.Router) {
				r.Get("/", app.RecipientGet)
				r.With(auth).Patch("/", app.RecipientUpdate)
				r.With(auth).Delete("/", app.RecipientDelete)

				r.Get("/donationlog", app.DonationLogGet)
				r.With(auth).Post("/donationlog", app.DonationLogEntryCreate)
				r.Get("/donationlog/{donationID}", app.DonationLogEntryGet)
				r.With(auth).Patch("/donationlog/{donationID}", app.DonationLogEntryUpdate)

				r.Get("/taxexempt", app.TaxStatusGet)
				r.With(auth).Patch("/taxexempt", app.TaxStatusUpdate)
				r.Get("/compliance", app.ComplianceStatusGet)
				r.With(auth).Patch("/compliance", app.ComplianceStatusUpdate)
			})
		})
	})

	return r
}
