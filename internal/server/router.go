package server

import (
	"html/template"
	"net/http"
	"strings"

	"jobtool/internal/config"
	"jobtool/internal/handlers"
	"jobtool/internal/middleware"
	"jobtool/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// formatMoney — "$1,234.56"; отрицательные значения как "-$80.00"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)

	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	n := len(intPart)
	for i, r := range intPart {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String() + "." + fracPart
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Static("/static", "./web/static")

	r.SetFuncMap(template.FuncMap{
		"eq":    func(a, b interface{}) bool { return a == b },
		"money": formatMoney,
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
	})
	r.LoadHTMLGlob("web/templates/*.html")

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("jobtool_session", store))

	r.Use(middleware.InjectUser())

	// ГЛАВНАЯ
	r.GET("/", handlers.IndexPage)

	// AUTH
	r.GET("/register", handlers.ShowRegister)
	r.POST("/register", handlers.Register)
	r.GET("/login", handlers.ShowLogin)
	r.POST("/login", handlers.Login)
	r.GET("/logout", handlers.Logout)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())

	// ЗАКАЗЧИКИ
	auth.GET("/clients", handlers.ListClients)
	auth.GET("/clients/new",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.ShowNewClient,
	)
	auth.POST("/clients/new",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.CreateClient,
	)
	auth.GET("/clients/:id", handlers.ShowClientDetail)

	auth.GET("/clients/:id/edit",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.ShowEditClient,
	)
	auth.POST("/clients/:id/edit",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.UpdateClient,
	)

	// удаление — только админ, и только если нет проектов
	auth.POST("/clients/:id/delete",
		middleware.RequireRole(models.RoleAdmin),
		handlers.DeleteClient,
	)

	// РЕСУРСЫ
	auth.GET("/assets", handlers.ListAssets)
	auth.GET("/assets/new",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.ShowNewAsset,
	)
	auth.POST("/assets/new",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.CreateAsset,
	)
	auth.GET("/assets/:id/edit",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.ShowEditAsset,
	)
	auth.POST("/assets/:id/edit",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.UpdateAsset,
	)

	// ПРОЕКТЫ
	auth.GET("/projects", handlers.ListProjects)
	auth.GET("/projects/new",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.ShowNewProject,
	)
	auth.POST("/projects/new",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.CreateProject,
	)
	auth.GET("/projects/:id/edit",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.ShowEditProject,
	)
	auth.POST("/projects/:id/edit",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.UpdateProject,
	)
	auth.POST("/projects/:id/delete",
		middleware.RequireRole(models.RoleAdmin),
		handlers.DeleteProject,
	)

	// ОСОБЫЕ СТАВКИ ПРОЕКТА
	auth.GET("/projects/:id/overrides",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.ShowProjectOverrides,
	)
	auth.POST("/projects/:id/overrides",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.CreateProjectOverride,
	)
	auth.POST("/projects/:id/overrides/:override_id/edit",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.UpdateProjectOverride,
	)
	auth.POST("/projects/:id/overrides/:override_id/delete",
		middleware.RequireRole(models.RoleAdmin, models.RoleOffice),
		handlers.DeleteProjectOverride,
	)

	// ОТЧЁТ
	auth.GET("/projects/:id/report", handlers.ShowProjectReport)

	// ЖУРНАЛ РАБОТ
	work := auth.Group("/work")
	work.Use(middleware.RequireRole(models.RoleAdmin, models.RoleOffice, models.RoleForeman))
	work.GET("/new", handlers.ShowNewWorkEntry)
	work.POST("/new", handlers.CreateWorkEntry)
	work.GET("/:id/edit", handlers.ShowEditWorkEntry)
	work.POST("/:id/edit", handlers.UpdateWorkEntry)
	work.POST("/:id/delete", handlers.DeleteWorkEntry)

	// ЖУРНАЛ МАТЕРИАЛОВ
	materials := auth.Group("/materials")
	materials.Use(middleware.RequireRole(models.RoleAdmin, models.RoleOffice, models.RoleForeman))
	materials.GET("/new", handlers.ShowNewMaterialEntry)
	materials.POST("/new", handlers.CreateMaterialEntry)
	materials.GET("/:id/edit", handlers.ShowEditMaterialEntry)
	materials.POST("/:id/edit", handlers.UpdateMaterialEntry)
	materials.POST("/:id/delete", handlers.DeleteMaterialEntry)

	// ОПЛАТЫ
	payments := auth.Group("/payments")
	payments.Use(middleware.RequireRole(models.RoleAdmin, models.RoleOffice))
	payments.GET("/new", handlers.ShowNewPayment)
	payments.POST("/new", handlers.CreatePayment)
	payments.POST("/:id/delete", handlers.DeletePayment)

	// АУДИТ
	auth.GET("/audit",
		middleware.RequireRole(models.RoleAdmin, models.RoleViewer),
		handlers.ListAuditLogs,
	)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
