package api

import (
	"powerplant_project/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all battery routes
func SetupRoutes(r *gin.Engine, svc *service.Service) {
	registerValidators()
	h := NewHandler(svc)

	r.GET("/health", h.Health)

	battery := r.Group("/battery")
	{
		battery.POST("/create", h.CreateBattery)
		battery.POST("/batteries", h.CreateBatteries)
		battery.GET("/batteries", h.GetBatteries)
		battery.POST("/range", h.GetBatteriesInPostcodeRange)

		battery.GET("/:id", h.GetBattery)
		battery.PUT("/:id", h.UpdateBattery)
	}
}

// NewRouter builds the engine with the standard middleware chain
func NewRouter(svc *service.Service, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger())
	r.Use(CORS(allowedOrigins))

	SetupRoutes(r, svc)
	return r
}
