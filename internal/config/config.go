// Package config loads gateway settings from the environment, with a .env
// file picked up automatically in development.
package config

import (
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Config struct {
	HTTPPort string

	DBDriver string
	DBDSN    string

	ObjEndpoint  string
	ObjAccessKey string
	ObjSecretKey string
	ObjSecure    bool
	ObjBucket    string

	ScanAddress string

	RedisAddress string
	RedisTTL     time.Duration

	KafkaBrokers string
	KafkaTopic   string

	UntrustedMount string
	RawMount       string
	ScanMount      string

	TrustStore string
	Audience   string

	SweepSchedule string
	SweepMaxAge   time.Duration
}

func LoadConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("docriver")
	v.AutomaticEnv()

	v.SetDefault("http_port", "8080")
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_dsn", "host=localhost user=docriver dbname=docriver sslmode=disable")
	v.SetDefault("obj_endpoint", "localhost:9000")
	v.SetDefault("obj_access_key", "minioadmin")
	v.SetDefault("obj_secret_key", "minioadmin")
	v.SetDefault("obj_secure", false)
	v.SetDefault("obj_bucket", "docriver")
	v.SetDefault("scan_address", "tcp://localhost:3310")
	v.SetDefault("redis_address", "")
	v.SetDefault("redis_ttl", "5m")
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_topic", "docriver-tx")
	v.SetDefault("untrusted_mount", "/var/docriver/untrusted")
	v.SetDefault("raw_mount", "/var/docriver/raw")
	v.SetDefault("scan_mount", "/scandir")
	v.SetDefault("trust_store", "")
	v.SetDefault("audience", "docriver")
	v.SetDefault("sweep_schedule", "0 */10 * * * *")
	v.SetDefault("sweep_max_age", "1h")

	return &Config{
		HTTPPort:       v.GetString("http_port"),
		DBDriver:       v.GetString("db_driver"),
		DBDSN:          v.GetString("db_dsn"),
		ObjEndpoint:    v.GetString("obj_endpoint"),
		ObjAccessKey:   v.GetString("obj_access_key"),
		ObjSecretKey:   v.GetString("obj_secret_key"),
		ObjSecure:      v.GetBool("obj_secure"),
		ObjBucket:      v.GetString("obj_bucket"),
		ScanAddress:    v.GetString("scan_address"),
		RedisAddress:   v.GetString("redis_address"),
		RedisTTL:       v.GetDuration("redis_ttl"),
		KafkaBrokers:   v.GetString("kafka_brokers"),
		KafkaTopic:     v.GetString("kafka_topic"),
		UntrustedMount: v.GetString("untrusted_mount"),
		RawMount:       v.GetString("raw_mount"),
		ScanMount:      v.GetString("scan_mount"),
		TrustStore:     v.GetString("trust_store"),
		Audience:       v.GetString("audience"),
		SweepSchedule:  v.GetString("sweep_schedule"),
		SweepMaxAge:    v.GetDuration("sweep_max_age"),
	}
}

// GetDb opens the lifecycle database named by the config.
func GetDb(cnf *Config) *gorm.DB {
	var dialector gorm.Dialector
	switch cnf.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cnf.DBDSN)
	default:
		dialector = postgres.Open(cnf.DBDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logrus.Fatalf("error connecting to database: %v", err)
	}
	return db
}
