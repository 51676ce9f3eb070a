// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	HTTP    HTTPServer `yaml:"http"`
	ValKey  ValKey     `yaml:"valkey"`
	Backend Backend    `yaml:"backend"`
	Gateway Gateway    `yaml:"gateway"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

type ValKey struct {
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
	Prefix   string              `yaml:"prefix" default:"kpi-gateway"`
}

// Backend holds the endpoints of the two upstream services. The auth API
// verifies credentials; the KPI API owns the performance indicator records.
// Both expect the same static API key on every request.
type Backend struct {
	AuthBaseURL    string              `yaml:"authBaseURL"`
	KPIBaseURL     string              `yaml:"kpiBaseURL"`
	APIKey         commoncfg.SourceRef `yaml:"apiKey"`
	RequestTimeout time.Duration       `yaml:"requestTimeout" default:"10s"`
}

type Gateway struct {
	SessionDuration time.Duration `yaml:"sessionDuration" default:"12h"`
	LoginPath       string        `yaml:"loginPath" default:"/login"`
	ErrorPath       string        `yaml:"errorPath" default:"/error"`

	// CSRFSecret signs the per-session CSRF tokens.
	CSRFSecret commoncfg.SourceRef `yaml:"csrfSecret"`

	// FlashRetention bounds how long an unread notification survives in the
	// store; the display auto-hide duration is separate and travels with the
	// notification itself.
	FlashRetention time.Duration `yaml:"flashRetention" default:"1m"`

	SessionCookieTemplate CookieTemplate `yaml:"sessionCookie"`
	VisitorCookieTemplate CookieTemplate `yaml:"visitorCookie"`

	// DashboardCacheTTL controls how long aggregated dashboard series are
	// served from the in-process cache before hitting the KPI API again.
	DashboardCacheTTL time.Duration `yaml:"dashboardCacheTTL" default:"5m"`
}
