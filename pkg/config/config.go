package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var config = viper.New()

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`

	Database struct {
		Host     string `mapstructure:"HOST"`
		Port     string `mapstructure:"PORT"`
		DBNAME   string `mapstructure:"DBNAME"`
		User     string `mapstructure:"USER"`
		Password string `mapstructure:"PASSWORD"`
		SSLMode  string `mapstructure:"SSLMODE"`
		Timezone string `mapstructure:"TIMEZONE"`

		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`

	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`

	Chain struct {
		NodeURL       string        `mapstructure:"NODE_URL"`
		ModuleAddress string        `mapstructure:"MODULE_ADDRESS"`
		WaitTimeout   time.Duration `mapstructure:"WAIT_TIMEOUT"`
		PollInterval  time.Duration `mapstructure:"POLL_INTERVAL"`
	} `mapstructure:"CHAIN"`

	Cache struct {
		// GracePeriod is how long stale entries wait before a refetch is
		// allowed, covering the indexing pipeline's lag between chain
		// finality and mirror visibility.
		GracePeriod time.Duration `mapstructure:"GRACE_PERIOD"`
		TTL         time.Duration `mapstructure:"TTL"`
	} `mapstructure:"CACHE"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

func LoadConfig() *Config {
	config.SetConfigName("config")
	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	setDefaults(config)

	if err := config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			zap.L().Error("failed to read config file", zap.Error(err))
			os.Exit(1)
		}
	}

	var cfg Config
	if err := config.Unmarshal(&cfg); err != nil {
		zap.L().Error("failed to unmarshal config", zap.Error(err))
		os.Exit(1)
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "bountyboard")
	v.SetDefault("DATABASE.SSLMODE", "disable")
	v.SetDefault("CHAIN.WAIT_TIMEOUT", 30*time.Second)
	v.SetDefault("CHAIN.POLL_INTERVAL", 500*time.Millisecond)
	v.SetDefault("CACHE.GRACE_PERIOD", 3*time.Second)
	v.SetDefault("CACHE.TTL", time.Minute)
}
