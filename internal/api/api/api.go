package api

import (
	"ticketdesk/cmd/middleware"
	"ticketdesk/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"
)

type Routers struct {
	Service service.Service
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())
	apiGroup := app.Group("/v1")

	apiGroup.GET("/overview", r.Service.GetOverview)
	apiGroup.GET("/statistics", r.Service.GetStatistics)

	apiGroup.GET("/events", r.Service.ListEvents)
	apiGroup.GET("/events/:id", r.Service.GetEvent)
	apiGroup.DELETE("/events/:id", r.Service.DeleteEvent)
	apiGroup.GET("/events/:id/translations", r.Service.ExportTranslations)

	apiGroup.GET("/tickets", r.Service.BrowseTickets)
	apiGroup.POST("/tickets/:id/validate", r.Service.ValidateTicket)

	apiGroup.POST("/form/new", r.Service.OpenNewForm)
	apiGroup.POST("/form/edit/:id", r.Service.OpenEditForm)
	apiGroup.GET("/form/translations/template", r.Service.TranslationTemplate)
	apiGroup.POST("/form/translations/import", r.Service.ImportTranslations)
	apiGroup.POST("/form/translations/cancel", r.Service.CancelImport)
	apiGroup.POST("/form/submit", r.Service.SubmitForm)
	apiGroup.POST("/form/cancel", r.Service.CancelForm)

	app.GET("/", func(c *ginext.Context) {
		c.File("./frontend/index.html")
	})
	app.GET("/events", func(c *ginext.Context) {
		c.File("./frontend/events.html")
	})
	app.GET("/tickets", func(c *ginext.Context) {
		c.File("./frontend/tickets.html")
	})
	app.Static("/frontend", "./frontend")

	return app
}
