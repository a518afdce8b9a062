package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	cancelBookingHandler "github.com/m04kA/SMC-StationBookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-StationBookingService/internal/api/handlers/create_booking"
	getBookingHandler "github.com/m04kA/SMC-StationBookingService/internal/api/handlers/get_booking"
	getStationHandler "github.com/m04kA/SMC-StationBookingService/internal/api/handlers/get_station"
	getUserBookingsHandler "github.com/m04kA/SMC-StationBookingService/internal/api/handlers/get_user_bookings"
	getWaitlistPositionHandler "github.com/m04kA/SMC-StationBookingService/internal/api/handlers/get_waitlist_position"
	listStationsHandler "github.com/m04kA/SMC-StationBookingService/internal/api/handlers/list_stations"
	registerDeviceHandler "github.com/m04kA/SMC-StationBookingService/internal/api/handlers/register_device"
	"github.com/m04kA/SMC-StationBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-StationBookingService/internal/config"
	bookingRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/booking"
	devicetokenRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/devicetoken"
	penaltyRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/penalty"
	stationRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/station"
	waitlistRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/waitlist"
	mailServiceClient "github.com/m04kA/SMC-StationBookingService/internal/integrations/mailservice"
	"github.com/m04kA/SMC-StationBookingService/internal/notify"
	"github.com/m04kA/SMC-StationBookingService/internal/scheduler"
	bookingsService "github.com/m04kA/SMC-StationBookingService/internal/service/bookings"
	penaltyService "github.com/m04kA/SMC-StationBookingService/internal/service/penalty"
	stationsService "github.com/m04kA/SMC-StationBookingService/internal/service/stations"
	waitlistService "github.com/m04kA/SMC-StationBookingService/internal/service/waitlist"
	cancelBookingUC "github.com/m04kA/SMC-StationBookingService/internal/usecase/cancel_booking"
	createBookingUC "github.com/m04kA/SMC-StationBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-StationBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-StationBookingService/pkg/logger"
	"github.com/m04kA/SMC-StationBookingService/pkg/metrics"
	"github.com/m04kA/SMC-StationBookingService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-StationBookingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-StationBookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем репозитории и транзакционный менеджер (с метриками или без)
	var (
		bookingRepository     *bookingRepo.Repository
		stationRepository     *stationRepo.Repository
		waitlistRepository    *waitlistRepo.Repository
		penaltyRepository     *penaltyRepo.Repository
		devicetokenRepository *devicetokenRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		stationRepository = stationRepo.NewRepository(wrappedDB)
		waitlistRepository = waitlistRepo.NewRepository(wrappedDB)
		penaltyRepository = penaltyRepo.NewRepository(wrappedDB)
		devicetokenRepository = devicetokenRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		stationRepository = stationRepo.NewRepository(db)
		waitlistRepository = waitlistRepo.NewRepository(db)
		penaltyRepository = penaltyRepo.NewRepository(db)
		devicetokenRepository = devicetokenRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем диспетчер уведомлений
	var mailSender notify.EmailSender
	if cfg.MailService.Enabled {
		mailSender = mailServiceClient.NewClient(
			cfg.MailService.URL,
			time.Duration(cfg.MailService.Timeout)*time.Second,
			log,
		)
		log.Info("MailService client initialized (url=%s, timeout=%ds)", cfg.MailService.URL, cfg.MailService.Timeout)
	}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled {
		webpushOptions = &webpush.Options{
			Subscriber:      cfg.Push.Subscriber,
			VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
			TTL:             cfg.Push.TTL,
		}
		log.Info("Web push enabled (subscriber=%s)", cfg.Push.Subscriber)
	}

	dispatcher := notify.NewDispatcher(
		devicetokenRepository,
		mailSender,
		webpushOptions,
		log,
		cfg.Notify.Workers,
		cfg.Notify.QueueSize,
	)
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	// Инициализируем сервисы
	penaltySvc := penaltyService.NewService(penaltyRepository, log)
	waitlistSvc := waitlistService.NewService(
		waitlistRepository,
		bookingRepository,
		stationRepository,
		txMgr,
		dispatcher,
		log,
	)
	bookingSvc := bookingsService.NewService(bookingRepository, log)
	stationSvc := stationsService.NewService(stationRepository, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		stationRepository,
		waitlistRepository,
		penaltySvc,
		waitlistSvc,
		txMgr,
		dispatcher,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		stationRepository,
		penaltySvc,
		waitlistSvc,
		txMgr,
		&scheduler.RealTimeProvider{},
		dispatcher,
		log,
	)

	// Запускаем фоновый reconciliation-планировщик
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(
			bookingRepository,
			stationRepository,
			penaltySvc,
			waitlistSvc,
			txMgr,
			dispatcher,
			log,
			time.Duration(cfg.Scheduler.IntervalSeconds)*time.Second,
		)
		if err := sched.Start(schedCtx); err != nil {
			log.Fatal("Failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getWaitlistPosition := getWaitlistPositionHandler.NewHandler(waitlistSvc, log)
	listStations := listStationsHandler.NewHandler(stationSvc, log)
	getStation := getStationHandler.NewHandler(stationSvc, log)
	registerDevice := registerDeviceHandler.NewHandler(devicetokenRepository, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	r.Use(middleware.RequestID)

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
		r.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")

		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Список станций с доступностью слотов
	api.HandleFunc("/stations", listStations.Handle).Methods(http.MethodGet)

	// Карточка станции
	api.HandleFunc("/stations/{stationId}", getStation.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования (или постановка в очередь)
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// История бронирований пользователя
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Очередь ожидания ---
	// Позиция пользователя в очереди станции
	protected.HandleFunc("/stations/{stationId}/waitlist", getWaitlistPosition.Handle).Methods(http.MethodGet)

	// --- Push-уведомления ---
	// Регистрация web push подписки устройства
	protected.HandleFunc("/devices", registerDevice.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
