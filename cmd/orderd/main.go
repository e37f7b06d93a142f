// Command orderd runs the LiveKart order placement service.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "orderd",
	Short: "LiveKart order placement service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg := viper.GetString("config"); cfg != "" {
			viper.SetConfigFile(cfg)
			if err := viper.ReadInConfig(); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file")
	rootCmd.PersistentFlags().String("http-addr", ":8080", "API listen address")
	rootCmd.PersistentFlags().String("metrics-addr", ":9100", "metrics listen address")
	rootCmd.PersistentFlags().String("db-path", "data/orderflow.db", "sqlite database path")
	rootCmd.PersistentFlags().String("redis-addr", "", "redis address for the idempotency store (empty: in-process guard)")
	rootCmd.PersistentFlags().Duration("idempotency-ttl", 0, "idempotency record validity window")
	rootCmd.PersistentFlags().String("kafka-brokers", "", "comma-separated kafka brokers for order events (empty: disabled)")
	rootCmd.PersistentFlags().String("kafka-topic", "order.placed", "kafka topic for order events")
	rootCmd.PersistentFlags().String("identity-endpoint", "", "identity provider userinfo URL (empty: static dev verifier)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level")

	cobra.CheckErr(viper.BindPFlags(rootCmd.PersistentFlags()))
	viper.SetEnvPrefix("ORDERFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
