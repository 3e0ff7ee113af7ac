package common

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/weaveworks/promrus"
)

// LoadConfig reads the application configuration from the given directory
// (config.yaml) plus any user-specified override files.
func LoadConfig(config interface{}, defaultPath string, overrideConfigs []string) {
	viper.SetConfigName("config")
	viper.AddConfigPath(defaultPath)
	if err := viper.ReadInConfig(); err != nil {
		log.Error(err)
		os.Exit(-1)
	}
	for _, overrideConfig := range overrideConfigs {
		viper.SetConfigFile(overrideConfig)
		if err := viper.MergeInConfig(); err != nil {
			log.Error(err)
			os.Exit(-1)
		}
	}
	if err := viper.Unmarshal(config); err != nil {
		log.Error(err)
		os.Exit(-1)
	}
}

// BindCommandlineArguments makes parsed pflag values available through viper.
func BindCommandlineArguments() {
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		log.Error(err)
		os.Exit(-1)
	}
}

// ConfigureLogging sets up logrus with a prometheus hook so log volume per
// level is observable.
func ConfigureLogging() {
	log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: true})
	log.SetOutput(os.Stdout)
	hook, err := promrus.NewPrometheusHook()
	if err != nil {
		log.WithError(err).Warn("could not register prometheus logging hook")
		return
	}
	log.AddHook(hook)
}

// ServeMetrics exposes the prometheus registry on /metrics and returns a
// function that shuts the server down.
func ServeMetrics(port uint16) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: ":" + strconv.Itoa(int(port)), Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server failure")
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("error shutting down metrics server")
		}
	}
}
