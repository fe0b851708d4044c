// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RabbitMQURL             string `yaml:"rabbitmq_url"` // Пусто — нотификации отключены
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	RouterOS                `yaml:"routeros"`
	JWTToken                `yaml:"jwttoken"`
	Admin                   `yaml:"admin"`
	Jobs                    `yaml:"jobs"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RouterOS структура для настройки подключения к REST API роутера.
// TimeoutRouter ограничивает каждый вызов: зависший роутер не должен
// останавливать сервис целиком.
type RouterOS struct {
	AddressRouter  string        `yaml:"address"`
	UserRouter     string        `yaml:"username"`
	PasswordRouter string        `yaml:"password"`
	TimeoutRouter  time.Duration `yaml:"timeout" env-default:"10s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Admin учётные данные администратора панели.
type Admin struct {
	AdminUsername     string `yaml:"admin_username" env-default:"admin"`
	AdminPasswordHash string `yaml:"admin_password_hash"` // bcrypt-хэш
}

// Jobs интервалы фоновых задач.
type Jobs struct {
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"10m"`
	SyncInterval  time.Duration `yaml:"sync_interval" env-default:"30m"`
}

// MustLoad функция для загрузки конфига, путь берётся из переменной окружения CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"RouterOS:\n"+
			"  Address: %s\n"+
			"  User: %s\n"+
			"  Timeout: %s\n"+
			"Jobs:\n"+
			"  SweepInterval: %s\n"+
			"  SyncInterval: %s\n",
		c.Env,
		c.MigrationsPath,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressRouter,
		c.UserRouter,
		c.TimeoutRouter,
		c.SweepInterval,
		c.SyncInterval,
	)
}
