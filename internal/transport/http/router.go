package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/mc-consultoria/proteccion-civil/internal/handlers"
	middleware "github.com/mc-consultoria/proteccion-civil/internal/middleware/auth"
)

type Deps struct {
	HealthHandler  *handlers.HealthHandler
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	RequestHandler *handlers.RequestHandler
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", d.HealthHandler.Live)
	e.GET("/health/ready", d.HealthHandler.Ready)

	authMW := middleware.NewBearerMiddleware(d.JWTSecret)

	api := e.Group("/api")
	api.GET("/ping", d.HealthHandler.Ping)
	api.GET("/test-db", d.HealthHandler.TestDB)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.POST("/logout", d.AuthHandler.Logout)

	api.GET("/users/profile", d.AuthHandler.Profile, authMW.RequireAuth)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.GET("/:id/contacto", d.ProductHandler.GetContact)

	adminProducts := products.Group("", authMW.RequireAdmin)
	adminProducts.POST("", d.ProductHandler.CreateProduct)
	adminProducts.PUT("/:id", d.ProductHandler.PatchProduct)
	adminProducts.PATCH("/:id", d.ProductHandler.PatchProduct)
	adminProducts.DELETE("/:id", d.ProductHandler.DeleteProduct)

	services := api.Group("/services")
	services.GET("/dictamenes", d.RequestHandler.Dictamenes)
	services.GET("/tramites", d.RequestHandler.Tramites)
	services.POST("/solicitar", d.RequestHandler.Submit)

	solicitudes := api.Group("/solicitudes", authMW.RequireAdmin)
	solicitudes.GET("", d.RequestHandler.List)
	solicitudes.GET("/:id", d.RequestHandler.Get)
	solicitudes.PUT("/:id/status", d.RequestHandler.UpdateStatus)
}
