package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

const driverName = "mysql"

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type AuthConfig struct {
	Secret       string `yaml:"secret"`
	TokenTTLMins int    `yaml:"token_ttl_minutes"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Addr        string         `yaml:"addr"`
	DB          DatabaseConfig `yaml:"database"`
	Auth        AuthConfig     `yaml:"auth"`
	CORSOrigins string         `yaml:"cors_origins"`
	SeedDemo    bool           `yaml:"seed_demo_data"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込み失敗: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルのパース失敗: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Auth.TokenTTLMins <= 0 {
		cfg.Auth.TokenTTLMins = 1440 // 24h
	}
	return &cfg, nil
}

// CORSOriginList splits the comma-separated cors_origins value.
func (c *Config) CORSOriginList() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func Connect(c DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.DBName)

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("接続準備に失敗: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("DB接続に失敗: %w", err)
	}

	// 接続プール（合算がMySQLの max_connections を超えないよう配分する）
	conn.SetMaxOpenConns(80)
	conn.SetMaxIdleConns(20)
	conn.SetConnMaxLifetime(30 * time.Minute)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	return conn, nil
}
