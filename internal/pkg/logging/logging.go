package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	stdlog "log"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Request and diagnostics logging shared by the client, the CLI and the
// webhook receiver

// Configuration keys
const (
	KeyLocation = "logging.location"
	KeyFormat   = "logging.format"
	KeyLevel    = "logging.level"
)

type ctxID int

const (
	txnIDKey ctxID = iota
	correlationIDKey
)

// WithTxnID returns a context which knows its transaction ID
func WithTxnID(ctx context.Context, txnID string) context.Context {
	return context.WithValue(ctx, txnIDKey, txnID)
}

// TxnID returns the transaction ID of ctx, if it has one
func TxnID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	txnID, ok := ctx.Value(txnIDKey).(string)
	return txnID, ok
}

// WithCorrelationID returns a context which knows the correlation ID of
// the request it serves
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

var (
	// every entry carries the process identity
	gLogger   *logrus.Entry
	gLogFile  *os.File
	gInstance = uuid.New().String()
)

func init() {
	viper.SetDefault(KeyLocation, "stderr")
	viper.SetDefault(KeyFormat, "text")
	viper.SetDefault(KeyLevel, "info")

	gLogger = logrus.WithFields(logrus.Fields{
		"pid":      os.Getpid(),
		"exe":      path.Base(os.Args[0]),
		"instance": gInstance,
	})
}

// Logger returns the global logger, tagged with the transaction and
// correlation IDs of ctx when it has them
func Logger(ctx context.Context) *logrus.Entry {
	if ctx == nil {
		return gLogger
	}

	fields := logrus.Fields{}
	if txnID, ok := TxnID(ctx); ok {
		fields["txnid"] = txnID
	}
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		fields["correlationid"] = id
	}

	if len(fields) == 0 {
		return gLogger
	}

	return gLogger.WithFields(fields)
}

// Configure applies the location, level and format settings of cfg.  An
// explicit debug level set before the call is kept.
func Configure(cfg *viper.Viper) error {
	if err := setOutput(cfg.GetString(KeyLocation)); err != nil {
		return err
	}

	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		level, err := logrus.ParseLevel(cfg.GetString(KeyLevel))
		if err != nil {
			return fmt.Errorf("bad log level: [%s]", cfg.GetString(KeyLevel))
		}
		logrus.SetLevel(level)
	}

	formatter, err := formatterFor(cfg.GetString(KeyFormat))
	if err != nil {
		return err
	}
	logrus.SetFormatter(formatter)

	// route the standard library logger through logrus
	stdlog.SetOutput(gLogger.WriterLevel(logrus.DebugLevel))

	return nil
}

func setOutput(location string) error {
	var out io.Writer

	switch location {
	case "stdout":
		out = os.Stdout
	case "stderr", "":
		out = os.Stderr
	default:
		file, err := os.OpenFile(location, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		gLogger.Debugf("logging to %s", location)
		out = file
	}

	logrus.SetOutput(out)

	// the previous file is no longer written to
	if gLogFile != nil && gLogFile != out {
		gLogFile.Close()
		gLogFile = nil
	}
	if file, ok := out.(*os.File); ok && file != os.Stdout && file != os.Stderr {
		gLogFile = file
	}

	return nil
}

func formatterFor(format string) (logrus.Formatter, error) {
	switch format {
	case "json":
		return &logrus.JSONFormatter{}, nil
	case "text", "":
		return &logrus.TextFormatter{}, nil
	}

	return nil, fmt.Errorf("bad log format: [%s]", format)
}
