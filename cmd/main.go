package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"stella-settlement-api/internal/cache"
	"stella-settlement-api/internal/config"
	"stella-settlement-api/internal/dal"
	"stella-settlement-api/internal/dao"
	"stella-settlement-api/internal/idgen"
	"stella-settlement-api/internal/ledger"
	"stella-settlement-api/internal/logger"
	"stella-settlement-api/internal/metrics"
	"stella-settlement-api/internal/model"
	"stella-settlement-api/internal/mq"
	"stella-settlement-api/internal/notify"
	"stella-settlement-api/internal/router"
	"stella-settlement-api/internal/service"
	"stella-settlement-api/internal/upstream"
)

func main() {
	// load config env
	env := os.Getenv("ENV")
	if env == "" {
		env = "dev"
	}
	path := flag.String("config", "config/config."+env+".yaml", "config file")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	opt := logger.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level, Stdout: cfg.Server.Mode == "debug"}
	appLog := logger.NewLogger("app", opt)
	accessLog := logger.NewLogger("access", opt)
	sqlLog := logger.NewLogger("sql", opt)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// init infra
	db, err := dal.NewMySQL(cfg.Mysql, sqlLog)
	if err != nil {
		appLog.Fatalf("mysql: %v", err)
	}
	if cfg.Mysql.AutoMigrate {
		if err := model.Migrate(db); err != nil {
			appLog.Fatalf("migrate: %v", err)
		}
	}

	var locker service.Locker
	storeCache := cache.NewStoreCache(nil, dao.NewMainDao(db), time.Duration(cfg.Settlement.StoreCacheTTLSec)*time.Second, appLog)
	if rdb, err := dal.NewRedis(cfg.Redis); err != nil {
		// 没有 Redis 时直接读库，也不加结算锁，靠唯一索引去重
		appLog.Warnf("redis unavailable, running without cache and lock: %v", err)
	} else {
		defer rdb.Close()
		storeCache = cache.NewStoreCache(rdb, dao.NewMainDao(db), time.Duration(cfg.Settlement.StoreCacheTTLSec)*time.Second, appLog)
		locker = cache.NewSettleLock(rdb, time.Duration(cfg.Settlement.LockTTLSec)*time.Second, appLog)
	}

	// idgen
	ids, err := idgen.NewGenerator(cfg.Snowflake.NodeID)
	if err != nil {
		appLog.Fatalf("idgen: %v", err)
	}

	mt := metrics.New(prometheus.DefaultRegisterer)

	stripeProvider := upstream.NewStripeProvider(upstream.StripeOptions{
		SecretKey:      cfg.Stripe.SecretKey,
		AccountCountry: cfg.Stripe.AccountCountry,
	}, appLog.WithField("module", "stripe"))
	gateway := upstream.NewGateway(stripeProvider, appLog.WithField("module", "gateway"))

	var alerter service.Alerter
	if cfg.Telegram.BotToken != "" {
		alerter = notify.NewAlerter(cfg.Telegram, appLog.WithField("module", "alert"))
	}
	go idgen.WatchClock(ctx, appLog, func() {
		if alerter != nil {
			alerter.Alert("system clock moved backward", nil)
		}
	})

	var marketing service.Marketing
	var dispatcher notify.Dispatcher
	marketingClient := notify.NewMarketingClient(cfg.Marketing, appLog.WithField("module", "marketing"))
	if cfg.Marketing.ApiKey != "" {
		marketing = marketingClient
	}
	deliverer := notify.NewDeliverer(marketingClient, cfg.Marketing.SellerSaleTpl, cfg.Marketing.OrderConfirmTpl, mt)
	dispatcher = notify.NewAsyncDispatcher(deliverer, appLog.WithField("module", "notify"))

	// start consumers
	if cfg.RabbitMQ.Enabled {
		rabbit, err := dal.NewRabbitMQ(cfg.RabbitMQ, appLog.WithField("module", "rabbitmq"))
		if err != nil {
			appLog.Warnf("rabbitmq unavailable, notifications sent in-process: %v", err)
		} else {
			defer rabbit.Close()
			dispatcher = mq.NewPublisher(rabbit, dispatcher, appLog.WithField("module", "mq"))
			consumer := mq.NewNotifyConsumer(rabbit, deliverer, cfg.Marketing.MaxDeliveryRetry, appLog.WithField("module", "mq"))
			go consumer.Start(ctx)
		}
	}

	buyers := service.NewBuyerService(db, stripeProvider, marketing, cfg.Marketing.WelcomeListID, cfg.Stripe.PromoPercentOff, appLog.WithField("module", "buyer"))
	settlementSvc, err := service.NewSettlementService(service.SettlementDeps{
		DB:         db,
		Stores:     storeCache,
		Locker:     locker,
		IDs:        ids,
		Gateway:    gateway,
		Sessions:   stripeProvider,
		Ledger:     ledger.New(db),
		Buyers:     buyers,
		Dispatcher: dispatcher,
		Alerter:    alerter,
		Metrics:    mt,
		Cfg:        cfg.Settlement,
		Log:        appLog.WithField("module", "settlement"),
	})
	if err != nil {
		appLog.Fatalf("settlement service: %v", err)
	}
	sellers := service.NewSellerService(db, stripeProvider, cfg.Stripe.OnboardingURL, appLog.WithField("module", "seller"))

	// http server
	r := router.New(router.Options{
		Mode:       cfg.Server.Mode,
		HMACSecret: cfg.Security.HMACSecret,
		Settlement: settlementSvc,
		Sellers:    sellers,
		Metrics:    mt,
		Gatherer:   prometheus.DefaultGatherer,
		Log:        appLog,
		AccessLog:  accessLog,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Infof("listening %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	appLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("http server shutdown")
	}
}
