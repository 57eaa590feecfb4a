package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jake-scott/netilion-client/internal/pkg/settings"
	"github.com/jake-scott/netilion-client/pkg/netilion"
)

func checkRequiredFlags(needFlags ...string) error {
	missingFlags := []string{}

	for _, f := range needFlags {
		if !viper.IsSet(f) || viper.GetString(f) == "" {
			missingFlags = append(missingFlags, f)
		}
	}

	if len(missingFlags) > 0 {
		itemPlural := "item"
		if len(missingFlags) > 1 {
			itemPlural = "items"
		}
		return fmt.Errorf("required config %s `%s` not set", itemPlural, strings.Join(missingFlags, "`, `"))
	}

	return nil
}

// clientPreRunE is the PersistentPreRunE of the command groups talking to
// the API.  Cobra runs only the closest persistent hook, so it repeats the
// root one.
func clientPreRunE(cmd *cobra.Command, args []string) error {
	if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
		return err
	}

	return checkRequiredFlags(settings.RequiredKeys...)
}

// newClient is replaced in tests
var newClient = func() (netilion.NetilionAPI, error) {
	cfg, err := settings.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	return netilion.NewClient(cfg), nil
}

// withClient runs fn with a client built from the configuration
func withClient(fn func(c netilion.NetilionAPI) error) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	return fn(c)
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}

	_, err = fmt.Fprintln(output, string(b))
	return err
}

func printLines[T fmt.Stringer](items []T) error {
	for _, item := range items {
		if _, err := fmt.Fprintln(output, item.String()); err != nil {
			return err
		}
	}

	return nil
}

// output is where command results go, replaced in tests
var output io.Writer = os.Stdout

func parseID(what, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad %s ID: %s", what, arg)
	}

	return id, nil
}

func parseIDs(what string, args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(what, arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func parseTime(what, arg string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, arg)
	if err != nil {
		return t, fmt.Errorf("bad %s time %s, expected RFC3339 eg. 2021-03-04T05:06:07Z", what, arg)
	}

	return t, nil
}

// parseValue reads a specification value as JSON, falling back to a
// plain string
func parseValue(arg string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(arg), &v); err != nil {
		return arg
	}

	return v
}
