package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jake-scott/netilion-client/internal/pkg/logging"
	"github.com/jake-scott/netilion-client/internal/pkg/settings"
)

var _rootCmdOpts struct {
	cfgFile         string
	debug           bool
	endpoint        string
	clientID        string
	clientSecret    string
	username        string
	password        string
	applicationID   int64
	applicationName string
	timeout         time.Duration
	logLevel        string
	logFormat       string
	logLocation     string
}

var rootCmd = &cobra.Command{
	Use:   "netilion",
	Short: "Command line client and webhook receiver for the Netilion IoT API",

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Configure(viper.GetViper())
	},
}

// Execute runs the command selected on the command line
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&_rootCmdOpts.cfgFile, "config", "", "config file (default is $HOME/.netilion.yaml)")
	pf.BoolVarP(&_rootCmdOpts.debug, "debug", "d", false, "enable debug logging")
	pf.StringVar(&_rootCmdOpts.endpoint, "endpoint", "", "Netilion endpoint, eg. https://api.netilion.endress.com")
	pf.StringVar(&_rootCmdOpts.clientID, "client-id", "", "API client ID, also used as the API key")
	pf.StringVar(&_rootCmdOpts.clientSecret, "client-secret", "", "API client secret")
	pf.StringVar(&_rootCmdOpts.username, "username", "", "Netilion user name")
	pf.StringVar(&_rootCmdOpts.password, "password", "", "Netilion password")
	pf.Int64Var(&_rootCmdOpts.applicationID, "application-id", 0, "ID of the client application, looked up when not set")
	pf.StringVar(&_rootCmdOpts.applicationName, "application-name", "", "name of the client application")
	pf.DurationVar(&_rootCmdOpts.timeout, "timeout", time.Second*30, "maximum duration of an API call, eg. 1m or 10s")
	pf.StringVar(&_rootCmdOpts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&_rootCmdOpts.logFormat, "log-format", "text", "log format (text or json)")
	pf.StringVar(&_rootCmdOpts.logLocation, "log-location", "stderr", "stdout, stderr or a file name")

	errPanic(viper.GetViper().BindPFlag(settings.KeyEndpoint, pf.Lookup("endpoint")))
	errPanic(viper.GetViper().BindPFlag(settings.KeyClientID, pf.Lookup("client-id")))
	errPanic(viper.GetViper().BindPFlag(settings.KeyClientSecret, pf.Lookup("client-secret")))
	errPanic(viper.GetViper().BindPFlag(settings.KeyUsername, pf.Lookup("username")))
	errPanic(viper.GetViper().BindPFlag(settings.KeyPassword, pf.Lookup("password")))
	errPanic(viper.GetViper().BindPFlag(settings.KeyApplicationID, pf.Lookup("application-id")))
	errPanic(viper.GetViper().BindPFlag(settings.KeyApplicationName, pf.Lookup("application-name")))
	errPanic(viper.GetViper().BindPFlag(settings.KeyTimeout, pf.Lookup("timeout")))
	errPanic(viper.GetViper().BindPFlag(logging.KeyLevel, pf.Lookup("log-level")))
	errPanic(viper.GetViper().BindPFlag(logging.KeyFormat, pf.Lookup("log-format")))
	errPanic(viper.GetViper().BindPFlag(logging.KeyLocation, pf.Lookup("log-location")))
}

func initConfig() {
	if _rootCmdOpts.debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	settings.LoadDotEnv()

	if err := settings.Configure(viper.GetViper(), _rootCmdOpts.cfgFile); err != nil {
		logging.Logger(nil).WithError(err).Fatal("loading configuration")
	}
}

func errPanic(err error) {
	if err != nil {
		panic(err)
	}
}
