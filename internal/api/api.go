package api

import (
	"context"
	"errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ougirez/pricelist/internal/api/controller"
	"github.com/ougirez/pricelist/internal/pkg/logger"
	"github.com/ougirez/pricelist/internal/service/auth"
	"net/http"
)

type Options struct {
	AllowOrigins []string
	// MaxFileSize is a size like "64M"; empty means no limit.
	MaxFileSize string
}

type APIService struct {
	router      *echo.Echo
	authService *auth.Service
}

func (svc *APIService) Serve(addr string) {
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(context.Background(), err)
	}
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

func (svc *APIService) Handler() http.Handler {
	return svc.router
}

func NewAPIService(opts Options, pricelistService controller.PricelistService, authService *auth.Service) (*APIService, error) {
	svc := &APIService{router: echo.New(), authService: authService}

	svc.router.HideBanner = true
	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.JSONSerializer = JSONSerializer{}
	svc.router.Use(middleware.Logger())
	svc.router.Use(middleware.Recover())
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.AllowOrigins,
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))
	if opts.MaxFileSize != "" {
		svc.router.Use(middleware.BodyLimit(opts.MaxFileSize))
	}

	api := svc.router.Group("/api/v1", svc.AuthMiddleware)
	cntrl := controller.NewController(pricelistService)

	providers := api.Group("/providers")
	providers.GET("/:id/template", cntrl.GetTemplate)
	providers.PUT("/:id/template", cntrl.SaveTemplate)

	pricelists := api.Group("/pricelists")
	pricelists.POST("/preview", cntrl.PreviewPricelist)
	pricelists.POST("/upload", cntrl.UploadPricelist)

	uploads := api.Group("/uploads")
	uploads.GET("/:id", cntrl.GetUpload)
	uploads.DELETE("/:id", cntrl.CancelUpload)

	return svc, nil
}
