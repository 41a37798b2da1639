package httpx

import (
	"github.com/go-chi/chi/v5"
)

// Handlers mengelompokkan semua handler HTTP supaya wiring di main rapi.
type Handlers struct {
	Checkout *CheckoutHandler
	Webhook  *WebhookHandler
	Stock    *StockHandler
	Status   *OrderStatusHandler
	OTP      *OTPHandler
	Admin    *AdminHandler
	Cron     *CronHandler
}

// Register memasang seluruh route di bawah /api. Mode maintenance menutup
// endpoint publik; subtree admin hanya lolos lewat RequireAdmin.
func Register(r *chi.Mux, h Handlers, adminEmail string, maintenance bool) {
	r.Route("/api", func(api chi.Router) {
		api.Use(Maintenance(maintenance, adminEmail))

		api.Post("/checkout", h.Checkout.Checkout)
		api.Post("/webhooks/pakasir", h.Webhook.HandlePakasir)
		api.Get("/products/stock", h.Stock.GetStock)
		api.Get("/orders/{transactionID}", h.Status.GetStatus)
		api.Post("/auth/send-otp", h.OTP.Send)
		api.Post("/auth/verify-otp", h.OTP.Verify)

		api.Route("/cron", func(cron chi.Router) {
			cron.Post("/payment-reminder", h.Cron.PaymentReminder)
			cron.Get("/payment-reminder", h.Cron.PaymentReminder)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(RequireAdmin(adminEmail))

			admin.Get("/products", h.Admin.ListProducts)
			admin.Post("/products", h.Admin.CreateProduct)
			admin.Put("/products/{id}", h.Admin.UpdateProduct)
			admin.Delete("/products/{id}", h.Admin.DeleteProduct)
			admin.Post("/products/import-stock", h.Admin.ImportStock)

			admin.Get("/promos", h.Admin.ListPromos)
			admin.Post("/promos", h.Admin.CreatePromo)
			admin.Put("/promos/{id}", h.Admin.UpdatePromo)

			admin.Post("/preorder/deliver", h.Admin.DeliverPreorder)
		})
	})
}
