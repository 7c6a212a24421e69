package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}
type MysqlCfg struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Database     string `mapstructure:"database"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Charset      string `mapstructure:"charset"`
	MaxIdleConns int    `mapstructure:"maxIdleConns"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
	AutoMigrate  bool   `mapstructure:"autoMigrate"`
}
type RabbitCfg struct {
	Enabled     bool   `mapstructure:"enabled"`
	URL         string `mapstructure:"url"`
	Exchange    string `mapstructure:"exchange"`
	NotifyQueue string `mapstructure:"notifyQueue"`
	Prefetch    int    `mapstructure:"prefetch"`
}
type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}
type SecurityCfg struct {
	HMACSecret string `mapstructure:"hmacSecret"`
}

// SettlementCfg 结算参数，百分比均为 0-100
type SettlementCfg struct {
	ProcessorFeePct         decimal.Decimal `mapstructure:"-"`
	DefaultPlatformFeePct   decimal.Decimal `mapstructure:"-"`
	DefaultConsignmentRate  decimal.Decimal `mapstructure:"-"`
	OnlineShippingSurcharge decimal.Decimal `mapstructure:"-"`

	ProcessorFeePctRaw         string `mapstructure:"processorFeePct"`
	DefaultPlatformFeePctRaw   string `mapstructure:"defaultPlatformFeePct"`
	DefaultConsignmentRateRaw  string `mapstructure:"defaultConsignmentRate"`
	OnlineShippingSurchargeRaw string `mapstructure:"onlineShippingSurcharge"`

	TransferConcurrency int `mapstructure:"transferConcurrency"`
	LockTTLSec          int `mapstructure:"lockTTLSec"`
	StoreCacheTTLSec    int `mapstructure:"storeCacheTTLSec"`
	BuyerTimeoutSec     int `mapstructure:"buyerTimeoutSec"`
}

type StripeCfg struct {
	SecretKey       string  `mapstructure:"secretKey"`
	PromoPercentOff float64 `mapstructure:"promoPercentOff"`
	AccountCountry  string  `mapstructure:"accountCountry"`
	OnboardingURL   string  `mapstructure:"onboardingUrl"`
}

type MarketingCfg struct {
	ApiUrl           string `mapstructure:"apiUrl"`
	ApiKey           string `mapstructure:"apiKey"`
	Revision         string `mapstructure:"revision"`
	WelcomeListID    string `mapstructure:"welcomeListId"`
	SellerSaleTpl    string `mapstructure:"sellerSaleTemplate"`
	OrderConfirmTpl  string `mapstructure:"orderConfirmTemplate"`
	TimeoutSec       int    `mapstructure:"timeoutSec"`
	MaxDeliveryRetry int    `mapstructure:"maxDeliveryRetry"`
}

type TelegramCfg struct {
	BotToken string `mapstructure:"botToken"`
	ChatID   string `mapstructure:"chatId"`
}

type LogCfg struct {
	Dir   string `mapstructure:"dir"`
	Level string `mapstructure:"level"`
}

type SnowflakeCfg struct {
	NodeID int64 `mapstructure:"nodeId"`
}

type Root struct {
	Server     ServerCfg     `mapstructure:"server"`
	Mysql      MysqlCfg      `mapstructure:"mysql"`
	RabbitMQ   RabbitCfg     `mapstructure:"rabbitmq"`
	Redis      RedisCfg      `mapstructure:"redis"`
	Security   SecurityCfg   `mapstructure:"security"`
	Settlement SettlementCfg `mapstructure:"settlement"`
	Stripe     StripeCfg     `mapstructure:"stripe"`
	Marketing  MarketingCfg  `mapstructure:"marketing"`
	Telegram   TelegramCfg   `mapstructure:"telegram"`
	Log        LogCfg        `mapstructure:"log"`
	Snowflake  SnowflakeCfg  `mapstructure:"snowflake"`
}

// Load 读取 config/config.<env>.yaml，环境变量 STELLA_* 覆盖同名配置
func Load(path string) (*Root, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("STELLA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindSecrets(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file failed: %w", err)
	}
	var c Root
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	if err := c.applyDefaults(); err != nil {
		return nil, err
	}
	return &c, nil
}

// 未写进 yaml 的密钥也要能从环境变量读到
func bindSecrets(v *viper.Viper) {
	for _, key := range []string{
		"mysql.password",
		"redis.password",
		"rabbitmq.url",
		"security.hmacSecret",
		"stripe.secretKey",
		"marketing.apiKey",
		"telegram.botToken",
		"telegram.chatId",
	} {
		_ = v.BindEnv(key)
	}
}

func (c *Root) applyDefaults() error {
	// sane defaults
	if strings.TrimSpace(c.Server.Port) == "" {
		c.Server.Port = "8080"
	}
	if c.Mysql.Charset == "" {
		c.Mysql.Charset = "utf8mb4"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "settlement_events"
	}
	if c.RabbitMQ.NotifyQueue == "" {
		c.RabbitMQ.NotifyQueue = "settlement_notify"
	}
	if c.RabbitMQ.Prefetch <= 0 {
		c.RabbitMQ.Prefetch = 10
	}
	if c.Settlement.TransferConcurrency <= 0 {
		c.Settlement.TransferConcurrency = 4
	}
	if c.Settlement.LockTTLSec <= 0 {
		c.Settlement.LockTTLSec = 30
	}
	if c.Settlement.StoreCacheTTLSec <= 0 {
		c.Settlement.StoreCacheTTLSec = 300
	}
	if c.Settlement.BuyerTimeoutSec <= 0 {
		c.Settlement.BuyerTimeoutSec = 15
	}
	if c.Stripe.PromoPercentOff <= 0 {
		c.Stripe.PromoPercentOff = 10
	}
	if c.Stripe.AccountCountry == "" {
		c.Stripe.AccountCountry = "GB"
	}
	if c.Marketing.Revision == "" {
		c.Marketing.Revision = "2024-10-15"
	}
	if c.Marketing.TimeoutSec <= 0 {
		c.Marketing.TimeoutSec = 10
	}
	if c.Marketing.MaxDeliveryRetry <= 0 {
		c.Marketing.MaxDeliveryRetry = 3
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "./logs"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	var err error
	s := &c.Settlement
	if s.ProcessorFeePct, err = pct(s.ProcessorFeePctRaw, "2"); err != nil {
		return fmt.Errorf("settlement.processorFeePct: %w", err)
	}
	if s.DefaultPlatformFeePct, err = pct(s.DefaultPlatformFeePctRaw, "1"); err != nil {
		return fmt.Errorf("settlement.defaultPlatformFeePct: %w", err)
	}
	if s.DefaultConsignmentRate, err = pct(s.DefaultConsignmentRateRaw, "50"); err != nil {
		return fmt.Errorf("settlement.defaultConsignmentRate: %w", err)
	}
	if s.OnlineShippingSurcharge, err = pct(s.OnlineShippingSurchargeRaw, "10"); err != nil {
		return fmt.Errorf("settlement.onlineShippingSurcharge: %w", err)
	}
	return nil
}

func pct(raw, def string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		raw = def
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative: %s", raw)
	}
	return d, nil
}
