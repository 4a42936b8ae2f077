package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seatrove/seadb/pkg/client"
	"github.com/seatrove/seadb/pkg/config"
	"github.com/seatrove/seadb/pkg/logger"
)

var (
	cfgFile     string
	groupName   string
	verboseMode bool
	noWait      bool

	// one HTTP client for the process; the SDK borrows it per request
	httpClient = &http.Client{Timeout: 60 * time.Second}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seadb",
	Short: "seadb manages SeaDB server instances",
	Long: `seadb is the command line client for the SeaDB managed-database
management API: create, update and delete server instances, drive their
lifecycle, and configure monitoring.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.seadb.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verboseMode, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&groupName, "group", "", "Resource group of the target servers")
	rootCmd.PersistentFlags().BoolVar(&noWait, "no-wait", false, "Return as soon as the operation is accepted instead of waiting for completion")

	_ = viper.BindPFlag("group", rootCmd.PersistentFlags().Lookup("group"))

	rootCmd.AddCommand(instancesCmd)
	rootCmd.AddCommand(monitoringCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		path, err := config.DefaultConfigPath()
		cobra.CheckErr(err)
		viper.SetConfigFile(path)
	}

	// env binding (SEADB_* with the dot-to-underscore replacer) happens in
	// config.Load so library users get it too
	if err := viper.ReadInConfig(); err == nil && verboseMode {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	logger.InitLoggerOutputs()
	if verboseMode {
		logger.GlobalEnableConsoleLogger = true
		logger.GlobalLogLevel = "debug"
	}
	logger.InitProduction()
}

// newClient builds the management client from the loaded configuration.
func newClient() (*client.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return client.NewFromConfig(cfg, httpClient)
}

// requireGroup resolves the target resource group from flag or config.
func requireGroup() (string, error) {
	g := viper.GetString("group")
	if g == "" {
		return "", fmt.Errorf("no resource group: pass --group or set group in the config file")
	}
	return g, nil
}
