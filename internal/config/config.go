// Package config loads process configuration from a YAML file and the
// environment via viper, the way the rest of this codebase's ancestry does.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	GraphDB    GraphDBConfig    `mapstructure:"graphdb"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	K8s        K8sConfig        `mapstructure:"k8s"`
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Reporter   ReporterConfig   `mapstructure:"reporter"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Router     RouterConfig     `mapstructure:"router"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// GraphDBConfig holds the SPARQL triplestore connection (C5).
type GraphDBConfig struct {
	URL                string `mapstructure:"url"`
	Repository         string `mapstructure:"repository"`
	MetadataGraph      string `mapstructure:"metadata_graph"`
	PersistLocalCopies bool   `mapstructure:"persist_local_copies"`
	LocalIntentsDir    string `mapstructure:"local_intents_dir"`
}

// PrometheusConfig holds the default Prometheus endpoint used before
// per-namespace fallbacks are applied (C4).
type PrometheusConfig struct {
	URL     string `mapstructure:"url"`
	Timeout int    `mapstructure:"timeout_seconds"`
	Retries int    `mapstructure:"retries"`
}

// K8sConfig holds Kubernetes client bootstrap configuration.
type K8sConfig struct {
	ConfigPath string `mapstructure:"config_path"`
	InCluster  bool   `mapstructure:"in_cluster"`
	Enabled    bool   `mapstructure:"enabled"`
}

// DeploymentConfig holds C3 Deployment Engine configuration.
type DeploymentConfig struct {
	ImagePullSecretName   string `mapstructure:"image_pull_secret_name"`
	SourceNamespace       string `mapstructure:"source_namespace"`
	IngressHost           string `mapstructure:"ingress_host"`
	IngressClass          string `mapstructure:"ingress_class"`
	ReadyTimeoutSeconds   int    `mapstructure:"ready_timeout_seconds"`
	ReadyPollIntervalSec  int    `mapstructure:"ready_poll_interval_seconds"`
	UninstallTimeoutSec   int    `mapstructure:"uninstall_timeout_seconds"`
	IDONamespace          string `mapstructure:"ido_namespace"`
	ExternalPrometheusURL string `mapstructure:"external_prometheus_url"`
}

// ReporterConfig holds C4 Observation Reporter configuration.
type ReporterConfig struct {
	DefaultFrequencySeconds int `mapstructure:"default_frequency_seconds"`
	MinFrequencySeconds     int `mapstructure:"min_frequency_seconds"`
	MaxFrequencySeconds     int `mapstructure:"max_frequency_seconds"`
}

// RedisConfig holds Redis configuration for the cross-process caches.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RouterConfig holds C2 Intent Router configuration.
type RouterConfig struct {
	InNetBaseURL         string `mapstructure:"innet_base_url"`
	InNetReady           bool   `mapstructure:"innet_ready"`
	InOrchBaseURL        string `mapstructure:"inorch_base_url"`
	DownstreamTimeoutSec int    `mapstructure:"downstream_timeout_seconds"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/inserv-orch")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)

	viper.SetDefault("graphdb.url", "http://graphdb.default.svc.cluster.local:7200")
	viper.SetDefault("graphdb.repository", "intentDataEU")
	viper.SetDefault("graphdb.metadata_graph", "http://intend.eu/intent-reports-metadata")
	viper.SetDefault("graphdb.persist_local_copies", false)
	viper.SetDefault("graphdb.local_intents_dir", "/data/intents")

	viper.SetDefault("prometheus.url", "http://prometheus.default.svc.cluster.local:9090")
	viper.SetDefault("prometheus.timeout_seconds", 10)
	viper.SetDefault("prometheus.retries", 3)

	viper.SetDefault("k8s.in_cluster", true)
	viper.SetDefault("k8s.enabled", true)

	viper.SetDefault("deployment.image_pull_secret_name", "ghcr-secret")
	viper.SetDefault("deployment.source_namespace", "inorch-tmf-proxy")
	viper.SetDefault("deployment.ingress_class", "nginx")
	viper.SetDefault("deployment.ready_timeout_seconds", 300)
	viper.SetDefault("deployment.ready_poll_interval_seconds", 2)
	viper.SetDefault("deployment.uninstall_timeout_seconds", 300)
	viper.SetDefault("deployment.ido_namespace", "default")
	viper.SetDefault("deployment.external_prometheus_url", "http://start5g-1.cs.uit.no:9090")

	viper.SetDefault("reporter.default_frequency_seconds", 30)
	viper.SetDefault("reporter.min_frequency_seconds", 5)
	viper.SetDefault("reporter.max_frequency_seconds", 300)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("router.innet_base_url", "http://intend.eu/inNet")
	viper.SetDefault("router.innet_ready", true)
	viper.SetDefault("router.inorch_base_url", "http://inorch-tmf-proxy.default.svc.cluster.local")
	viper.SetDefault("router.downstream_timeout_seconds", 30)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.GraphDB.URL == "" {
		return fmt.Errorf("graphdb url is required")
	}
	if c.GraphDB.Repository == "" {
		return fmt.Errorf("graphdb repository is required")
	}
	if c.Deployment.ImagePullSecretName == "" {
		return fmt.Errorf("deployment image pull secret name is required")
	}
	if c.Reporter.MinFrequencySeconds > c.Reporter.MaxFrequencySeconds {
		return fmt.Errorf("reporter min frequency must not exceed max frequency")
	}
	return nil
}
