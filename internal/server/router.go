package server

import (
	"net/http"
	"strconv"
	"time"

	"comanda/internal/actor"
	"comanda/internal/httpx"
	"comanda/internal/infrastructure/metrics"
	notifyctrl "comanda/internal/notify/controller"
	orderctrl "comanda/internal/order/controller"
	paymentctrl "comanda/internal/payment/controller"
	tablectrl "comanda/internal/table/controller"
	tenantctrl "comanda/internal/tenant/controller"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(
	orderCtrl *orderctrl.OrderController,
	tableCtrl *tablectrl.TableController,
	paymentCtrl *paymentctrl.PaymentController,
	configCtrl *tenantctrl.ConfigController,
	streamCtrl *notifyctrl.StreamController,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Gateways authenticate by knowing the callback URL, not by actor
		// headers.
		r.Post("/payments/{provider}/callback", paymentCtrl.Callback)

		r.Group(func(r chi.Router) {
			r.Use(actorMiddleware(logger))

			r.Post("/orders", orderCtrl.Create)
			r.Get("/orders/{orderId}", orderCtrl.Get)
			r.Patch("/orders/{orderId}/status", orderCtrl.UpdateStatus)
			r.Post("/orders/{orderId}/adjustments", orderCtrl.ApplyAdjustment)

			r.Get("/tables/{tableId}", tableCtrl.Get)
			r.Patch("/tables/{tableId}/status", tableCtrl.UpdateStatus)

			r.Post("/payments/{provider}/initiate", paymentCtrl.Initiate)
			r.Get("/payments/{provider}/status/{transactionId}", paymentCtrl.Status)
			r.Get("/payments/history", paymentCtrl.History)

			r.Get("/payments/config", configCtrl.List)
			r.Get("/payments/config/{tenantId}", configCtrl.Get)
			r.Put("/payments/config/{tenantId}", configCtrl.Put)

			r.Get("/events/orders/{orderId}", streamCtrl.StreamOrder)
		})
	})

	return r
}

// actorMiddleware trusts the upstream gateway's identity headers and places
// the actor in the request context.
func actorMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := r.Header.Get("X-Actor-Role")
			tenantID, err := strconv.Atoi(r.Header.Get("X-Tenant-ID"))

			valid := role == actor.RoleStaff || role == actor.RoleTenantAdmin || role == actor.RoleSuperadmin
			if !valid || (role != actor.RoleSuperadmin && (err != nil || tenantID < 1)) {
				httpx.WriteJSON(w, logger, http.StatusUnauthorized, httpx.ErrorResponse{
					Error:   "UNAUTHORIZED",
					Message: "missing or invalid identity headers",
				})
				return
			}

			ctx := actor.WithContext(r.Context(), actor.Actor{TenantID: tenantID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
