package config

import (
	"fmt"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

type Environment string

const (
	Live Environment = "live"
	Beta             = "beta"
	Dev              = "dev"
)

type CloudNewsConfig struct {
	Env      Environment
	Addr     string
	BaseUrl  string
	LogLevel zerolog.Level

	Postgres  PostgresConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Facebook  FacebookConfig
	Publisher PublisherConfig
}

type PostgresConfig struct {
	User     string
	Password string
	Hostname string
	Port     int
	DbName   string
	LogLevel tracelog.LogLevel
	MinConn  int32
	MaxConn  int32
}

func (info PostgresConfig) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s", info.User, info.Password, info.Hostname, info.Port, info.DbName)
}

type StorageConfig struct {
	Key      string
	Secret   string
	Region   string
	Endpoint string

	// The one container that holds every news image and thumbnail.
	Bucket string
}

type AuthConfig struct {
	CookieDomain string
	CookieSecure bool
}

type FacebookConfig struct {
	GraphUrl string

	// App access token ("{app-id}|{app-secret}") used for Graph lookups that
	// are not on behalf of a logged-in user, like resolving writer names.
	AppAccessToken string
}

type PublisherConfig struct {
	// How long a submitted article waits before the background publisher
	// promotes it.
	PublishDelayMinutes int

	PollIntervalSeconds int
}

// Dev defaults. Deployments override the fields they care about before any
// package reads Config (main does this from the environment).
var Config = CloudNewsConfig{
	Env:      Dev,
	Addr:     "localhost:9001",
	BaseUrl:  "http://localhost:9001",
	LogLevel: zerolog.DebugLevel,
	Postgres: PostgresConfig{
		User:     "cloudnews",
		Password: "password",
		Hostname: "localhost",
		Port:     5432,
		DbName:   "cloudnews",
		LogLevel: tracelog.LogLevelWarn,
		MinConn:  2,
		MaxConn:  8,
	},
	Storage: StorageConfig{
		Key:      "cloudnews",
		Secret:   "cloudnewssecret",
		Region:   "dev",
		Endpoint: "http://localhost:9003",
		Bucket:   "news-images",
	},
	Auth: AuthConfig{
		CookieDomain: "localhost",
		CookieSecure: false,
	},
	Facebook: FacebookConfig{
		GraphUrl:       "https://graph.facebook.com/v2.8",
		AppAccessToken: "",
	},
	Publisher: PublisherConfig{
		PublishDelayMinutes: 15,
		PollIntervalSeconds: 60,
	},
}
