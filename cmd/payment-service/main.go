// cmd/payment-service/main.go
package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/bootstrap"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/db"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/httpclient"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/logger"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/mq"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/redis"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/zookeeper"

	campaignapp "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/campaign/application"
	campaigninfra "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/campaign/infrastructure"
	campaignhttp "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/campaign/interfaces"
	paymentapp "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/application"
	paymentdomain "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain"
	paymentport "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/domain/port"
	paymentinfra "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/infrastructure"
	paymenthttp "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/payment/interfaces"
	pricing "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/pricing/domain"
	promoapp "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/application"
	promoinfra "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/infrastructure"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/infrastructure/rule"
	promohttp "github.com/Cory7717/ReadySetFlyWeb-sub000/internal/service/promotion/interfaces"
)

const (
	serviceName = "payment-service"
	servicePort = 8084
)

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	logger.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	tracer := otel.Tracer(serviceName)

	// 1. 数据库与表结构
	gormDB, err := db.Open(db.Options{
		Addr:     cfg.Infra.Mysql.Addr,
		User:     cfg.Infra.Mysql.User,
		Password: cfg.Infra.Mysql.Password,
		Database: cfg.Infra.Mysql.Database,
	})
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&promoinfra.PromoCodeModel{},
		&promoinfra.PromoCodeUsageModel{},
		&paymentinfra.PayableOrderModel{},
		&paymentinfra.ListingModel{},
		&paymentinfra.TransactionModel{},
		&campaigninfra.CampaignOrderModel{},
		&campaigninfra.CampaignModel{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// 2. 资源锁: redis 或 zookeeper, 按配置选择
	locker := buildLocker(cfg)

	// 3. 支付事件流
	kafkaWriter := mq.NewKafkaWriter(strings.Split(cfg.Infra.Kafka.Brokers, ","), cfg.Infra.Kafka.PaymentEventsTopic)
	defer kafkaWriter.Close()
	events := paymentinfra.NewKafkaEventAdapter(kafkaWriter)

	// 4. 支付方适配器
	httpClient := httpclient.NewClient(tracer)
	paypal := paymentinfra.NewPayPalAdapter(httpClient, cfg.Paypal.BaseURL, cfg.Paypal.ClientID, cfg.Paypal.Secret)

	// 5. 营销服务
	ruleEngine, err := rule.NewCELRuleEngine()
	if err != nil {
		log.Fatalf("failed to initialize rule engine: %v", err)
	}
	promoSvc := promoapp.NewPromotionService(promoinfra.NewGormPromoRepository(gormDB), ruleEngine, tracer)

	// 6. 支付服务与落账执行器
	listings := paymentinfra.NewGormListingRepository(gormDB)
	paymentSvc := paymentapp.NewPaymentService(
		paypal, locker, events,
		paymentinfra.NewGormOrderRepository(gormDB),
		listings,
		paymentinfra.NewGormTransactionRepository(gormDB),
		promoSvc,
		paymentdomain.NewTokenIssuer(cfg.App.FreeOrderTokenSecret),
		cfg.Paypal.Currency,
		tracer,
	)
	paymentSvc.RegisterApplier(pricing.KindListingFee, paymentapp.NewListingApplier(listings, promoSvc))

	// 7. 广告服务, 并把广告单执行器挂进捕获守卫
	campaignSvc := campaignapp.NewCampaignService(
		campaigninfra.NewGormOrderRepository(gormDB),
		campaigninfra.NewGormCampaignRepository(gormDB),
		promoSvc, locker, tracer,
	)
	paymentSvc.RegisterApplier(pricing.KindAdCampaign, campaignapp.NewCampaignApplier(campaignSvc))

	// 8. 注册路由并启动
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			promohttp.NewPromotionHandler(promoSvc).RegisterRoutes(appCtx.Mux)
			paymenthttp.NewPaymentHandler(paymentSvc).RegisterRoutes(appCtx.Mux)
			campaignhttp.NewCampaignHandler(campaignSvc, paymentSvc).RegisterRoutes(appCtx.Mux)
			appCtx.Mux.Handle("GET /metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		},
	})
}

// buildLocker 按配置选择资源锁后端。
// 两种实现语义一致: 同一资源上的检查-落账序列互斥。
func buildLocker(cfg *bootstrap.Config) paymentport.ResourceLocker {
	switch cfg.App.LockBackend {
	case "zookeeper":
		conn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers)
		if err != nil {
			log.Fatalf("failed to connect zookeeper: %v", err)
		}
		return paymentinfra.NewZookeeperLockAdapter(conn)
	default:
		redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs)
		if err != nil {
			log.Fatalf("failed to initialize redis client: %v", err)
		}
		locker, err := paymentinfra.NewRedisLockAdapter(redisClient)
		if err != nil {
			log.Fatalf("failed to initialize redis locker: %v", err)
		}
		return locker
	}
}
