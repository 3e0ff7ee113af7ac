package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ingotproject/ingot/internal/common"
	"github.com/ingotproject/ingot/internal/common/app"
	"github.com/ingotproject/ingot/internal/loader"
)

const CustomConfigLocation = "config"

func init() {
	pflag.StringSlice(
		CustomConfigLocation,
		[]string{},
		"Fully qualified path to application configuration file (for multiple config files repeat this arg or separate paths with commas)",
	)
	pflag.Parse()
}

func main() {
	common.ConfigureLogging()
	common.BindCommandlineArguments()

	var config loader.Config
	userSpecifiedConfigs := viper.GetStringSlice(CustomConfigLocation)
	common.LoadConfig(&config, "./config/ingot", userSpecifiedConfigs)

	shutdownMetricServer := common.ServeMetrics(config.MetricsPort)
	defer shutdownMetricServer()

	if err := loader.Run(app.ShutdownContext(), &config); err != nil {
		log.WithError(err).Fatal("load failed")
	}
}
