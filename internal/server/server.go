package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/agrichar/internal/application"
	applicationdomain "github.com/smallbiznis/agrichar/internal/application/domain"
	"github.com/smallbiznis/agrichar/internal/auth"
	"github.com/smallbiznis/agrichar/internal/authorization"
	"github.com/smallbiznis/agrichar/internal/biochar"
	biochardomain "github.com/smallbiznis/agrichar/internal/biochar/domain"
	"github.com/smallbiznis/agrichar/internal/biomass"
	biomassdomain "github.com/smallbiznis/agrichar/internal/biomass/domain"
	"github.com/smallbiznis/agrichar/internal/config"
	"github.com/smallbiznis/agrichar/internal/conservation"
	"github.com/smallbiznis/agrichar/internal/fertilizer"
	fertilizerdomain "github.com/smallbiznis/agrichar/internal/fertilizer/domain"
	"github.com/smallbiznis/agrichar/internal/idempotency"
	"github.com/smallbiznis/agrichar/internal/observability"
	obsmiddleware "github.com/smallbiznis/agrichar/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/agrichar/internal/observability/metrics"
	obstracing "github.com/smallbiznis/agrichar/internal/observability/tracing"
	"github.com/smallbiznis/agrichar/internal/parcel"
	parceldomain "github.com/smallbiznis/agrichar/internal/parcel/domain"
	"github.com/smallbiznis/agrichar/internal/report"
	reportdomain "github.com/smallbiznis/agrichar/internal/report/domain"
	"github.com/smallbiznis/agrichar/internal/storage"
	storagedomain "github.com/smallbiznis/agrichar/internal/storage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	conservation.Module,
	auth.Module,
	authorization.Module,
	idempotency.Module,
	parcel.Module,
	biomass.Module,
	biochar.Module,
	storage.Module,
	application.Module,
	fertilizer.Module,
	report.Module,
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterAPIRoutes() }),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if obsCfg.Debug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	verifier *auth.Verifier
	authzSvc authorization.Service
	guard    *idempotency.Guard
	ledger   *conservation.Ledger

	parcelSvc      parceldomain.Service
	biomassSvc     biomassdomain.Service
	biocharSvc     biochardomain.Service
	storageSvc     storagedomain.Service
	applicationSvc applicationdomain.Service
	fertilizerSvc  fertilizerdomain.Service
	reportSvc      reportdomain.Service
}

type ServerParams struct {
	fx.In

	Gin *gin.Engine
	Cfg config.Config
	Log *zap.Logger

	Verifier *auth.Verifier
	AuthzSvc authorization.Service
	Guard    *idempotency.Guard
	Ledger   *conservation.Ledger

	ParcelSvc      parceldomain.Service
	BiomassSvc     biomassdomain.Service
	BiocharSvc     biochardomain.Service
	StorageSvc     storagedomain.Service
	ApplicationSvc applicationdomain.Service
	FertilizerSvc  fertilizerdomain.Service
	ReportSvc      reportdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		verifier:       p.Verifier,
		authzSvc:       p.AuthzSvc,
		guard:          p.Guard,
		ledger:         p.Ledger,
		parcelSvc:      p.ParcelSvc,
		biomassSvc:     p.BiomassSvc,
		biocharSvc:     p.BiocharSvc,
		storageSvc:     p.StorageSvc,
		applicationSvc: p.ApplicationSvc,
		fertilizerSvc:  p.FertilizerSvc,
		reportSvc:      p.ReportSvc,
	}
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(s.OwnerRequired())

	parcels := api.Group("/parcels")
	parcels.POST("", s.RequirePermission(authorization.ObjectParcel, authorization.ActionCreate), s.CreateParcel)
	parcels.GET("", s.RequirePermission(authorization.ObjectParcel, authorization.ActionView), s.ListParcels)
	parcels.GET("/:id", s.RequirePermission(authorization.ObjectParcel, authorization.ActionView), s.GetParcel)
	parcels.PATCH("/:id", s.RequirePermission(authorization.ObjectParcel, authorization.ActionUpdate), s.UpdateParcel)
	parcels.POST("/:id/deactivate", s.RequirePermission(authorization.ObjectParcel, authorization.ActionParcelDeactivate), s.DeactivateParcel)
	parcels.POST("/:id/verify", s.RequirePermission(authorization.ObjectParcel, authorization.ActionParcelVerify), s.VerifyParcel)
	parcels.DELETE("/:id", s.RequirePermission(authorization.ObjectParcel, authorization.ActionDelete), s.DeleteParcel)

	biomassGroup := api.Group("/biomass")
	biomassGroup.POST("", s.RequirePermission(authorization.ObjectBiomass, authorization.ActionCreate), s.CreateBiomass)
	biomassGroup.GET("", s.RequirePermission(authorization.ObjectBiomass, authorization.ActionView), s.ListBiomass)
	biomassGroup.GET("/:id", s.RequirePermission(authorization.ObjectBiomass, authorization.ActionView), s.GetBiomass)
	biomassGroup.PATCH("/:id", s.RequirePermission(authorization.ObjectBiomass, authorization.ActionUpdate), s.UpdateBiomass)
	biomassGroup.DELETE("/:id", s.RequirePermission(authorization.ObjectBiomass, authorization.ActionDelete), s.DeleteBiomass)

	batches := api.Group("/biochar/batches")
	batches.POST("", s.RequirePermission(authorization.ObjectBiocharBatch, authorization.ActionCreate), s.Idempotent("biochar_batch.create"), s.CreateBatch)
	batches.GET("", s.RequirePermission(authorization.ObjectBiocharBatch, authorization.ActionView), s.ListBatches)
	batches.GET("/:id", s.RequirePermission(authorization.ObjectBiocharBatch, authorization.ActionView), s.GetBatch)
	batches.POST("/:id/complete", s.RequirePermission(authorization.ObjectBiocharBatch, authorization.ActionBatchComplete), s.CompleteBatch)
	batches.POST("/:id/fail", s.RequirePermission(authorization.ObjectBiocharBatch, authorization.ActionBatchFail), s.FailBatch)
	batches.PATCH("/:id", s.RequirePermission(authorization.ObjectBiocharBatch, authorization.ActionUpdate), s.UpdateBatch)
	batches.DELETE("/:id", s.RequirePermission(authorization.ObjectBiocharBatch, authorization.ActionDelete), s.DeleteBatch)

	storageGroup := api.Group("/storage")
	storageGroup.POST("", s.RequirePermission(authorization.ObjectStorage, authorization.ActionCreate), s.CreateStorage)
	storageGroup.GET("", s.RequirePermission(authorization.ObjectStorage, authorization.ActionView), s.ListStorage)
	storageGroup.GET("/:id", s.RequirePermission(authorization.ObjectStorage, authorization.ActionView), s.GetStorage)
	storageGroup.PATCH("/:id", s.RequirePermission(authorization.ObjectStorage, authorization.ActionUpdate), s.UpdateStorage)
	storageGroup.DELETE("/:id", s.RequirePermission(authorization.ObjectStorage, authorization.ActionDelete), s.DeleteStorage)

	applications := api.Group("/applications")
	applications.POST("", s.RequirePermission(authorization.ObjectApplication, authorization.ActionCreate), s.Idempotent("application.create"), s.CreateApplication)
	applications.GET("", s.RequirePermission(authorization.ObjectApplication, authorization.ActionView), s.ListApplications)
	applications.GET("/:id", s.RequirePermission(authorization.ObjectApplication, authorization.ActionView), s.GetApplication)
	applications.DELETE("/:id", s.RequirePermission(authorization.ObjectApplication, authorization.ActionDelete), s.DeleteApplication)

	fertilizers := api.Group("/fertilizers")
	fertilizers.POST("", s.RequirePermission(authorization.ObjectFertilizer, authorization.ActionCreate), s.CreateFertilizer)
	fertilizers.GET("", s.RequirePermission(authorization.ObjectFertilizer, authorization.ActionView), s.ListFertilizers)
	fertilizers.GET("/usages", s.RequirePermission(authorization.ObjectFertilizer, authorization.ActionView), s.ListFertilizerUsages)
	fertilizers.GET("/:id", s.RequirePermission(authorization.ObjectFertilizer, authorization.ActionView), s.GetFertilizer)
	fertilizers.PATCH("/:id", s.RequirePermission(authorization.ObjectFertilizer, authorization.ActionUpdate), s.UpdateFertilizer)
	fertilizers.DELETE("/:id", s.RequirePermission(authorization.ObjectFertilizer, authorization.ActionDelete), s.DeleteFertilizer)
	fertilizers.POST("/:id/usages", s.RequirePermission(authorization.ObjectFertilizer, authorization.ActionFertilizerUse), s.Idempotent("fertilizer.use"), s.RecordFertilizerUsage)

	api.GET("/movements", s.RequirePermission(authorization.ObjectMovement, authorization.ActionView), s.ListMovements)

	reports := api.Group("/reports")
	reports.GET("/summary", s.RequirePermission(authorization.ObjectReport, authorization.ActionView), s.GetSummaryReport)
	reports.GET("/summary.pdf", s.RequirePermission(authorization.ObjectReport, authorization.ActionReportExport), s.ExportSummaryPDF)
	reports.GET("/summary.xlsx", s.RequirePermission(authorization.ObjectReport, authorization.ActionReportExport), s.ExportSummaryXLSX)
}
