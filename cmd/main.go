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

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/cancel_booking"
	confirmBookingHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/confirm_booking"
	createAreaHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/create_area"
	deactivateAreaHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/deactivate_area"
	decideBookingHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/decide_booking"
	getAgendaHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/get_agenda"
	getAreaHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/get_area"
	getCondoItemsHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/get_condo_items"
	getItemHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/get_item"
	getUnitItemsHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/get_unit_items"
	liftBlockHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/lift_block"
	listAreasHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/list_areas"
	placeBlockHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/place_block"
	requestBookingHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/request_booking"
	updateAreaHandler "github.com/m04kA/SMC-AmenityService/internal/api/handlers/update_area"
	"github.com/m04kA/SMC-AmenityService/internal/api/middleware"
	"github.com/m04kA/SMC-AmenityService/internal/config"
	areaRepo "github.com/m04kA/SMC-AmenityService/internal/infra/storage/area"
	itemRepo "github.com/m04kA/SMC-AmenityService/internal/infra/storage/item"
	transitionRepo "github.com/m04kA/SMC-AmenityService/internal/infra/storage/transition"
	notifyClient "github.com/m04kA/SMC-AmenityService/internal/integrations/notifyservice"
	"github.com/m04kA/SMC-AmenityService/internal/scheduler"
	areasService "github.com/m04kA/SMC-AmenityService/internal/service/areas"
	itemsService "github.com/m04kA/SMC-AmenityService/internal/service/items"
	buildAgendaUC "github.com/m04kA/SMC-AmenityService/internal/usecase/build_agenda"
	cancelBookingUC "github.com/m04kA/SMC-AmenityService/internal/usecase/cancel_booking"
	completeBookingsUC "github.com/m04kA/SMC-AmenityService/internal/usecase/complete_bookings"
	confirmBookingUC "github.com/m04kA/SMC-AmenityService/internal/usecase/confirm_booking"
	decideBookingUC "github.com/m04kA/SMC-AmenityService/internal/usecase/decide_booking"
	liftBlockUC "github.com/m04kA/SMC-AmenityService/internal/usecase/lift_block"
	placeBlockUC "github.com/m04kA/SMC-AmenityService/internal/usecase/place_block"
	requestBookingUC "github.com/m04kA/SMC-AmenityService/internal/usecase/request_booking"
	"github.com/m04kA/SMC-AmenityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AmenityService/pkg/logger"
	"github.com/m04kA/SMC-AmenityService/pkg/metrics"
	"github.com/m04kA/SMC-AmenityService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-AmenityService/pkg/txmanager"
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

	log.Info("Starting SMC-AmenityService...")
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

	// Клиент сервиса уведомлений
	notifier := notifyClient.NewClient(
		cfg.Notify.URL,
		time.Duration(cfg.Notify.Timeout)*time.Second,
		log,
	)
	log.Info("Notification client initialized (url=%s timeout=%ds)", cfg.Notify.URL, cfg.Notify.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		areaRepository       *areaRepo.Repository
		itemRepository       *itemRepo.Repository
		transitionRepository *transitionRepo.Repository
		txMgr                scheduler.TransactionManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		areaRepository = areaRepo.NewRepository(wrappedDB)
		itemRepository = itemRepo.NewRepository(wrappedDB)
		transitionRepository = transitionRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		areaRepository = areaRepo.NewRepository(db)
		itemRepository = itemRepo.NewRepository(db)
		transitionRepository = transitionRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Планировщик: сериализация операций по объекту
	sched := scheduler.New(txMgr, time.Duration(cfg.Scheduler.LockTimeout)*time.Second, log)

	// Инициализируем сервисы
	itemsSvc := itemsService.NewService(itemRepository, transitionRepository, log)
	areasSvc := areasService.NewService(
		areaRepository,
		itemRepository,
		transitionRepository,
		sched,
		notifier,
		log,
	)

	// Инициализируем use cases
	requestBookingUseCase := requestBookingUC.NewUseCase(
		itemRepository,
		areaRepository,
		transitionRepository,
		sched,
		notifier,
		log,
	)
	decideBookingUseCase := decideBookingUC.NewUseCase(
		itemRepository,
		areaRepository,
		transitionRepository,
		sched,
		notifier,
		log,
	)
	confirmBookingUseCase := confirmBookingUC.NewUseCase(
		itemRepository,
		transitionRepository,
		sched,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		itemRepository,
		areaRepository,
		transitionRepository,
		sched,
		notifier,
		&cancelBookingUC.RealTimeProvider{},
		log,
	)
	placeBlockUseCase := placeBlockUC.NewUseCase(
		itemRepository,
		areaRepository,
		transitionRepository,
		sched,
		notifier,
		log,
	)
	liftBlockUseCase := liftBlockUC.NewUseCase(
		itemRepository,
		transitionRepository,
		sched,
		log,
	)
	buildAgendaUseCase := buildAgendaUC.NewUseCase(
		itemRepository,
		areaRepository,
		time.Duration(cfg.Scheduler.AgendaCacheTTL)*time.Second,
		log,
	)

	// Кэш повестки сбрасывается после каждой зафиксированной записи
	sched.SetOnCommit(buildAgendaUseCase.InvalidateArea)
	areasSvc.SetAgendaInvalidator(buildAgendaUseCase)

	// Фоновое завершение бронирований
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	completeBookings := completeBookingsUC.NewUseCase(itemRepository, transitionRepository, sched, log)
	go completeBookings.Run(sweepCtx, time.Duration(cfg.Scheduler.SweepInterval)*time.Second)

	// Инициализируем handlers
	requestBooking := requestBookingHandler.NewHandler(requestBookingUseCase, log)
	decideBooking := decideBookingHandler.NewHandler(decideBookingUseCase, log)
	confirmBooking := confirmBookingHandler.NewHandler(confirmBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	placeBlock := placeBlockHandler.NewHandler(placeBlockUseCase, log)
	liftBlock := liftBlockHandler.NewHandler(liftBlockUseCase, log)
	getAgenda := getAgendaHandler.NewHandler(buildAgendaUseCase, log)
	getItem := getItemHandler.NewHandler(itemsSvc, log)
	getUnitItems := getUnitItemsHandler.NewHandler(itemsSvc, log)
	getCondoItems := getCondoItemsHandler.NewHandler(itemsSvc, log)
	createArea := createAreaHandler.NewHandler(areasSvc, log)
	updateArea := updateAreaHandler.NewHandler(areasSvc, log)
	deactivateArea := deactivateAreaHandler.NewHandler(areasSvc, log)
	getArea := getAreaHandler.NewHandler(areasSvc, log)
	listAreas := listAreasHandler.NewHandler(areasSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Все маршруты требуют заголовков личности от шлюза
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth)

	// --- Бронирования ---
	api.HandleFunc("/bookings", requestBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings", getCondoItems.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}", getItem.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/decision", decideBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// История бронирований квартиры
	api.HandleFunc("/units/{unitId}/bookings", getUnitItems.Handle).Methods(http.MethodGet)

	// --- Повестка месяца ---
	api.HandleFunc("/agenda/{month}", getAgenda.Handle).Methods(http.MethodGet)

	// --- Блоки обслуживания (для управляющих) ---
	api.HandleFunc("/blocks", placeBlock.Handle).Methods(http.MethodPost)
	api.HandleFunc("/blocks/{blockId}/lift", liftBlock.Handle).Methods(http.MethodPost)

	// --- Объекты ---
	api.HandleFunc("/areas", createArea.Handle).Methods(http.MethodPost)
	api.HandleFunc("/areas", listAreas.Handle).Methods(http.MethodGet)
	api.HandleFunc("/areas/{areaId}", getArea.Handle).Methods(http.MethodGet)
	api.HandleFunc("/areas/{areaId}", updateArea.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/areas/{areaId}", deactivateArea.Handle).Methods(http.MethodDelete)

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

	// Останавливаем фоновое завершение бронирований
	stopSweep()

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
