// Package server wires the gateway's collaborators from config and runs the
// HTTP surface until interrupted.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/docriver/gateway/internal/auth"
	"github.com/docriver/gateway/internal/blob"
	"github.com/docriver/gateway/internal/cache"
	"github.com/docriver/gateway/internal/config"
	"github.com/docriver/gateway/internal/jobs"
	"github.com/docriver/gateway/internal/queue"
	"github.com/docriver/gateway/internal/service"
	"github.com/docriver/gateway/internal/store"
	"github.com/docriver/gateway/internal/token"
	"github.com/docriver/gateway/internal/validate"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Server represents the gateway process.
type Server struct {
	cnf *config.Config
}

// NewServer creates a new server from the loaded config.
func NewServer(cnf *config.Config) *Server {
	return &Server{cnf: cnf}
}

// Start runs the server until interrupted.
func (s *Server) Start() {
	if err := Start(s.cnf); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

// Start wires the store, the object store, the scanner and the optional cache
// and queue, then serves HTTP until a termination signal arrives.
func Start(cnf *config.Config) error {
	db := config.GetDb(cnf)

	docStore := store.NewGormStore(db)
	if err := docStore.Migrate(); err != nil {
		return err
	}

	objStore, err := blob.NewMinio(cnf.ObjEndpoint, cnf.ObjAccessKey, cnf.ObjSecretKey, cnf.ObjSecure, cnf.ObjBucket)
	if err != nil {
		return err
	}

	scanner := validate.NewClamd(cnf.ScanAddress)
	if err := scanner.Ping(); err != nil {
		return fmt.Errorf("scanner unreachable at %s: %w", cnf.ScanAddress, err)
	}

	trust, err := token.LoadTrustStore(cnf.TrustStore)
	if err != nil {
		return err
	}
	authorizer := auth.NewAuthorizer(trust, cnf.Audience)
	if !authorizer.Enabled() {
		logrus.Warn("no trust store configured, authorization is disabled")
	}

	var locationCache cache.LocationCache
	if cnf.RedisAddress != "" {
		locationCache = cache.NewRedisLocationCache(cnf.RedisAddress, cnf.RedisTTL)
	}

	var txQueue queue.Queue
	if cnf.KafkaBrokers != "" {
		kafkaQueue, err := queue.NewKafka(cnf.KafkaBrokers, cnf.KafkaTopic)
		if err != nil {
			return err
		}
		defer kafkaQueue.Close()
		txQueue = kafkaQueue
	}

	if err := os.MkdirAll(cnf.UntrustedMount, 0o700); err != nil {
		return err
	}

	gateway := service.NewGateway(service.Options{
		Store:          docStore,
		Blob:           objStore,
		Scanner:        scanner,
		Auth:           authorizer,
		Cache:          locationCache,
		Queue:          txQueue,
		Bucket:         cnf.ObjBucket,
		UntrustedMount: cnf.UntrustedMount,
		RawMount:       cnf.RawMount,
		ScanMount:      cnf.ScanMount,
	})

	executor := jobs.NewTaskExecutor([]jobs.CronJob{
		jobs.NewStageSweeper(cnf.UntrustedMount, cnf.SweepMaxAge, cnf.SweepSchedule),
	})
	executor.Run()
	defer executor.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	h := &handlers{
		gateway: gateway,
		health:  healthHandler(sqlDB.Ping, objStore, scanner),
	}
	h.routes(router)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "PUT"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	httpServer := &http.Server{
		Addr:    ":" + cnf.HTTPPort,
		Handler: c.Handler(router),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting http server on: ", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error starting http server: %v", err)
			}
		}
		logrus.Infof("http server stopped")
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT)
	<-sigs
	fmt.Println()

	if err := httpServer.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error stopping http server: %v", err)
	}

	wg.Wait()
	return nil
}

// requestLogger logs one line per request the way the rest of the process
// logs, instead of gin's default format.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.Infof("%s %s - %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func healthHandler(pingDB func() error, objStore blob.Store, scanner *validate.Clamd) func(c *gin.Context) {
	return func(c *gin.Context) {
		checks := gin.H{}
		healthy := true

		if err := pingDB(); err != nil {
			checks["db"] = err.Error()
			healthy = false
		} else {
			checks["db"] = "UP"
		}
		if err := objStore.Ping(c.Request.Context()); err != nil {
			checks["objstore"] = err.Error()
			healthy = false
		} else {
			checks["objstore"] = "UP"
		}
		if err := scanner.Ping(); err != nil {
			checks["scanner"] = err.Error()
			healthy = false
		} else {
			checks["scanner"] = "UP"
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, checks)
	}
}
