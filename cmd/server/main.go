package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/schoolerp/backend/internal/application/billing"
	ledgerapp "github.com/schoolerp/backend/internal/application/ledger"
	"github.com/schoolerp/backend/internal/infrastructure/config"
	"github.com/schoolerp/backend/internal/infrastructure/event"
	"github.com/schoolerp/backend/internal/infrastructure/logger"
	"github.com/schoolerp/backend/internal/infrastructure/persistence"
	"github.com/schoolerp/backend/internal/infrastructure/scheduler"
	"github.com/schoolerp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx := context.Background()

	// Bridge logs to the OTLP collector when enabled. The bridged logger
	// replaces the base logger so every component below logs through it.
	var loggerProvider *telemetry.LoggerProvider
	if cfg.Telemetry.LogsEnabled {
		loggerProvider, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize logs provider", zap.Error(err))
		}

		bridged, err := telemetry.CreateBridgedLoggerFromConfig(&telemetry.BaseLoggerConfig{
			Level:      cfg.Log.Level,
			Format:     cfg.Log.Format,
			Output:     cfg.Log.Output,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		}, loggerProvider, cfg.Telemetry.ServiceName)
		if err != nil {
			log.Fatal("Failed to initialize bridged logger", zap.Error(err))
		}
		log = bridged
	}

	log.Info("Starting school billing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	// Continuous profiling. Span profiles require the profiler to be running
	// before they are enabled on the tracer provider.
	var profiler *telemetry.Profiler
	if cfg.Telemetry.ProfilerEnabled {
		profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
			Enabled:             true,
			ServerAddress:       cfg.Telemetry.ProfilerServerAddress,
			ApplicationName:     cfg.Telemetry.ServiceName,
			ProfileCPU:          true,
			ProfileAllocObjects: true,
			ProfileAllocSpace:   true,
			ProfileInuseObjects: true,
			ProfileInuseSpace:   true,
			ProfileGoroutines:   true,
		}, log)
		if err != nil {
			log.Fatal("Failed to start profiler", zap.Error(err))
		}
		if cfg.Telemetry.Enabled {
			if err := tracerProvider.EnableSpanProfiles(); err != nil {
				log.Warn("Failed to enable span profiles", zap.Error(err))
			}
		}
	}

	// Initialize metrics
	var meterProvider *telemetry.MeterProvider
	if cfg.Telemetry.MetricsEnabled {
		meterProvider, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize meter provider", zap.Error(err))
		}
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Database query tracing
	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Database metrics (query latency, slow queries, pool stats)
	if meterProvider != nil {
		_, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err != nil {
			log.Fatal("Failed to register database metrics", zap.Error(err))
		}
	}

	// Initialize repositories
	responsibleRepo := persistence.NewGormResponsibleRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	ledgerEntryRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	discountRepo := persistence.NewGormDiscountRepository(db.DB)
	unitOfWork := persistence.NewGormUnitOfWork(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Create outbox publisher for transactional event saving
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Inject outbox publisher into repositories that need transactional event publishing
	invoiceRepo.SetOutboxEventSaver(outboxPublisher)
	accountRepo.SetOutboxEventSaver(outboxPublisher)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	auditHandler := billingapp.NewFinancialAuditHandler(log)
	eventBus.Subscribe(auditHandler)
	log.Info("Event handlers registered",
		zap.Strings("audit_events", auditHandler.EventTypes()),
	)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(ctx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	directoryService := ledgerapp.NewAccountDirectoryService(accountRepo, responsibleRepo, log)
	postingService := ledgerapp.NewLedgerPostingService(unitOfWork, eventBus, log)
	balanceReader := ledgerapp.NewBalanceReaderService(accountRepo, ledgerEntryRepo, invoiceRepo, log)
	invoiceService := billingapp.NewInvoiceService(
		invoiceRepo,
		paymentRepo,
		discountRepo,
		directoryService,
		postingService,
		nil,
		cfg.Billing.LatePenaltyAmount,
		log,
	)

	// Billing metrics: activity counters from the services plus periodic
	// receivables collection straight from the database.
	var billingMetrics *telemetry.BillingMetrics
	if meterProvider != nil {
		billingMetrics, err = telemetry.NewBillingMetrics(telemetry.BillingMetricsConfig{
			Meter:               meterProvider.Meter("schoolerp.billing"),
			Logger:              log,
			ReceivablesProvider: telemetry.NewGormReceivablesMetricsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize billing metrics", zap.Error(err))
		}
		invoiceService.SetMetricsRecorder(billingMetrics)
		postingService.SetMetricsRecorder(billingMetrics)
		billingMetrics.StartPeriodicCollection(ctx, 5*time.Minute)
		defer billingMetrics.Stop()
	}

	// Outbox processor: guaranteed delivery from the outbox table to the bus
	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		processorConfig.BatchSize = cfg.Event.BatchSize
		processorConfig.PollInterval = cfg.Event.PollInterval
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(ctx); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Billing maintenance scheduler: daily overdue sweep and balance refresh
	if cfg.Scheduler.Enabled {
		schedulerConfig := scheduler.SchedulerConfig{
			Enabled:           cfg.Scheduler.Enabled,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}
		executor := scheduler.NewBillingExecutor(invoiceService, balanceReader, accountRepo, log)
		billingScheduler := scheduler.NewScheduler(schedulerConfig, executor, log)
		if err := billingScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start billing scheduler", zap.Error(err))
		}
		defer func() {
			if err := billingScheduler.Stop(ctx); err != nil {
				log.Error("Error stopping billing scheduler", zap.Error(err))
			}
		}()

		triggerConfig := scheduler.DefaultCronTriggerConfig()
		triggerConfig.DailyRunHour = cfg.Scheduler.DailyRunHour
		triggerConfig.DailyRunMinute = cfg.Scheduler.DailyRunMinute
		cronTrigger := scheduler.NewCronTrigger(triggerConfig, billingScheduler, log)
		if err := cronTrigger.Start(ctx); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			if err := cronTrigger.Stop(ctx); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
		log.Info("Billing scheduler started",
			zap.Int("daily_run_hour", cfg.Scheduler.DailyRunHour),
			zap.Int("daily_run_minute", cfg.Scheduler.DailyRunMinute),
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
		)
	}

	log.Info("School billing backend is running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if meterProvider != nil {
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}
	if loggerProvider != nil {
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logs provider", zap.Error(err))
		}
	}

	log.Info("Exited gracefully")
}
