package settings

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jake-scott/netilion-client/internal/pkg/logging"
	"github.com/jake-scott/netilion-client/pkg/netilion"
)

/*
 *  Maps the netilion.* configuration keys onto a client configuration.
 *  Values come from flags, the environment (NETILION_CLIENT_ID etc.),
 *  .env files and ~/.netilion.yaml, in that order of precedence.
 */

const (
	KeyEndpoint        = "netilion.endpoint"
	KeyClientID        = "netilion.client-id"
	KeyClientSecret    = "netilion.client-secret"
	KeyUsername        = "netilion.username"
	KeyPassword        = "netilion.password"
	KeyApplicationID   = "netilion.application-id"
	KeyApplicationName = "netilion.application-name"
	KeyAPIURL          = "netilion.api-url"
	KeyTokenURL        = "netilion.token-url"
	KeyTimeout         = "netilion.timeout"
)

const configName = ".netilion"

// RequiredKeys must be set before a client can be created
var RequiredKeys = []string{KeyEndpoint, KeyClientID, KeyClientSecret, KeyUsername, KeyPassword}

func init() {
	viper.SetDefault(KeyTimeout, time.Second*30)
}

// LoadDotEnv loads .env files from the working directory and from the
// directory of the executable.  Variables already in the environment win.
func LoadDotEnv() {
	if err := godotenv.Load(); err == nil {
		logging.Logger(nil).Debug("loaded .env from the working directory")
	}

	exe, err := os.Executable()
	if err != nil {
		logging.Logger(nil).Debugf("could not determine executable path: %s", err)
		return
	}

	envPath := filepath.Join(filepath.Dir(exe), ".env")
	if err := godotenv.Load(envPath); err == nil {
		logging.Logger(nil).Debugf("loaded %s", envPath)
	}
}

// Configure reads cfgFile, or ~/.netilion.yaml if cfgFile is empty, and
// binds the environment.  A missing default config file is not an error.
func Configure(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return errors.Wrap(err, "finding home directory")
		}

		v.AddConfigPath(home)
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return nil
		}
		return errors.Wrap(err, "reading config file")
	}

	logging.Logger(nil).Debugf("Using config file: %s", v.ConfigFileUsed())
	return nil
}

// Load builds and validates a client configuration from v
func Load(v *viper.Viper) (netilion.Configuration, error) {
	cfg := netilion.Configuration{
		Endpoint:        v.GetString(KeyEndpoint),
		ClientID:        v.GetString(KeyClientID),
		ClientSecret:    v.GetString(KeyClientSecret),
		Username:        v.GetString(KeyUsername),
		Password:        v.GetString(KeyPassword),
		ApplicationID:   v.GetInt64(KeyApplicationID),
		ApplicationName: v.GetString(KeyApplicationName),
		APIURL:          v.GetString(KeyAPIURL),
		TokenURL:        v.GetString(KeyTokenURL),
		Timeout:         v.GetDuration(KeyTimeout),
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "invalid configuration")
	}

	return cfg.WithDefaults(), nil
}
