package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"elem-admin/http-server/catalog/search"
	getcustomers "elem-admin/http-server/customer/get"
	"elem-admin/http-server/customer/remove"
	savecustomer "elem-admin/http-server/customer/save"
	upcustomer "elem-admin/http-server/customer/update"
	getdashboard "elem-admin/http-server/dashboard/get"
	generate_excel "elem-admin/http-server/generate-report/generate-excel"
	"elem-admin/http-server/login"
	getquotation "elem-admin/http-server/quotation/get"
	"elem-admin/http-server/quotation/pdf"
	savequotation "elem-admin/http-server/quotation/save"
	upquotation "elem-admin/http-server/quotation/update"
	getusers "elem-admin/http-server/user/get"
	saveuser "elem-admin/http-server/user/save"
	upuser "elem-admin/http-server/user/update"
	"elem-admin/internal/config"
	"elem-admin/internal/middleware/auth"
)

const frontendDir = "./frontend-dist"

func routes(cfg config.Config, log *slog.Logger, svc services) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(r chi.Router) {
		r.Post("/login", login.Login(log, svc.users))

		r.Group(func(r chi.Router) {
			r.Use(auth.BasicAuth(log, svc.users))

			r.With(auth.RequirePage("Dashboard")).Get("/dashboard", getdashboard.GetDashboard(log, svc.dashboard))

			r.Group(func(r chi.Router) {
				r.Use(auth.RequirePage("Customer"))
				r.Get("/customers", getcustomers.GetCustomers(log, svc.customers))
				r.Post("/customers", savecustomer.SaveCustomer(log, svc.customers))
				r.Put("/customers/{row}", upcustomer.UpdateCustomer(log, svc.customers))
				r.Delete("/customers/{row}", remove.DeleteCustomer(log, svc.customers))
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequirePage("Quotations"))
				r.Get("/quotations", getquotation.GetQuotations(log, svc.quotations))
				r.Get("/quotations/{serial}", getquotation.GetQuotation(log, svc.quotations))
				r.Post("/quotations", savequotation.SaveQuotation(log, svc.quotations, cfg.HTTPServer.Timeout))
				r.Put("/quotations/{serial}", upquotation.UpdateQuotation(log, svc.quotations, cfg.HTTPServer.Timeout))
				r.Get("/quotations/{serial}/pdf", pdf.DownloadPDF(log, svc.quotations))
				r.Get("/catalog/search", search.SearchCatalog(log, svc.catalog))
				r.Get("/report/excel", generate_excel.GenerateReportExcel(log, svc.excel))
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequirePage("Settings"))
				r.Get("/users", getusers.GetUsers(log, svc.users))
				r.Post("/users", saveuser.SaveUser(log, svc.users))
				r.Put("/users/{row}", upuser.UpdateUser(log, svc.users))
				r.Post("/users/{row}/deactivate", upuser.DeactivateUser(log, svc.users))
			})
		})
	})

	if _, err := os.Stat(frontendDir); os.IsNotExist(err) {
		log.Warn("frontend directory not found, serving API only", slog.String("path", frontendDir))
		return router
	}

	fileServer := http.FileServer(http.Dir(frontendDir))
	router.Handle("/assets/*", fileServer)

	// SPA fallback: unknown paths get index.html
	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(frontendDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, filepath.Join(frontendDir, "index.html"))
	})

	return router
}
