package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jake-scott/netilion-client/internal/pkg/handlers"
	"github.com/jake-scott/netilion-client/internal/pkg/logging"
	"github.com/jake-scott/netilion-client/internal/pkg/settings"
	"github.com/jake-scott/netilion-client/pkg/middlewares"
	"github.com/jake-scott/netilion-client/pkg/netilion"
	"github.com/jake-scott/netilion-client/version"
)

var _receiverCmdOpts struct {
	port            uint16
	tlsCertPath     string
	tlsKeyPath      string
	gracefulTimeout time.Duration
	readTimeout     time.Duration
	writeTimeout    time.Duration
	logRequests     bool
	queueSize       int
	workers         int
	rateLimit       float64
	rateBurst       int
	corsOrigins     []string
	stateNode       int64
}

var receiverCmd = &cobra.Command{
	Use:   "receiver",
	Short: "Run a web server receiving Netilion webhook events",

	RunE: func(cmd *cobra.Command, args []string) error {
		return doReceiver()
	},

	PreRunE: func(cmd *cobra.Command, args []string) error {
		if (viper.GetString("receiver.tls-cert") == "") != (viper.GetString("receiver.tls-key") == "") {
			return fmt.Errorf("receiver.tls-cert and receiver.tls-key must be set together")
		}

		// recording the last event needs the API
		if viper.GetInt64("receiver.state-node") != 0 {
			return checkRequiredFlags(settings.RequiredKeys...)
		}

		return nil
	},
}

func init() {
	f := receiverCmd.Flags()
	f.Uint16Var(&_receiverCmdOpts.port, "port", 8080, "HTTP port number")
	f.StringVar(&_receiverCmdOpts.tlsCertPath, "tls-cert", "", "TLS certificate file, serve plain HTTP when not set")
	f.StringVar(&_receiverCmdOpts.tlsKeyPath, "tls-key", "", "TLS key file")
	f.DurationVar(&_receiverCmdOpts.gracefulTimeout, "graceful-timeout", time.Second*15, "duration to wait for server to finish, eg. 1m or 10s")
	f.DurationVar(&_receiverCmdOpts.readTimeout, "read-timeout", time.Second*15, "duration to wait for request read, eg. 1m or 10s")
	f.DurationVar(&_receiverCmdOpts.writeTimeout, "write-timeout", time.Second*60, "duration to wait for request write, eg. 1m or 10s")
	f.BoolVar(&_receiverCmdOpts.logRequests, "log-requests", false, "log requests and responses (only in debug mode)")
	f.IntVar(&_receiverCmdOpts.queueSize, "queue-size", 100, "events waiting for a worker before deliveries are refused")
	f.IntVar(&_receiverCmdOpts.workers, "workers", 4, "events processed concurrently")
	f.Float64Var(&_receiverCmdOpts.rateLimit, "rate-limit", 50, "requests per second accepted, 0 for no limit")
	f.IntVar(&_receiverCmdOpts.rateBurst, "rate-burst", 100, "burst size of the rate limit")
	f.StringSliceVar(&_receiverCmdOpts.corsOrigins, "cors-origin", nil, "origins allowed to call the receiver from a browser")
	f.Int64Var(&_receiverCmdOpts.stateNode, "state-node", 0, "ID of a node recording the time of the last event")

	errPanic(viper.GetViper().BindPFlag("receiver.port", f.Lookup("port")))
	errPanic(viper.GetViper().BindPFlag("receiver.tls-cert", f.Lookup("tls-cert")))
	errPanic(viper.GetViper().BindPFlag("receiver.tls-key", f.Lookup("tls-key")))
	errPanic(viper.GetViper().BindPFlag("receiver.graceful-timeout", f.Lookup("graceful-timeout")))
	errPanic(viper.GetViper().BindPFlag("receiver.read-timeout", f.Lookup("read-timeout")))
	errPanic(viper.GetViper().BindPFlag("receiver.write-timeout", f.Lookup("write-timeout")))
	errPanic(viper.GetViper().BindPFlag("logging.log-requests", f.Lookup("log-requests")))
	errPanic(viper.GetViper().BindPFlag("receiver.queue-size", f.Lookup("queue-size")))
	errPanic(viper.GetViper().BindPFlag("receiver.workers", f.Lookup("workers")))
	errPanic(viper.GetViper().BindPFlag("receiver.rate-limit", f.Lookup("rate-limit")))
	errPanic(viper.GetViper().BindPFlag("receiver.rate-burst", f.Lookup("rate-burst")))
	errPanic(viper.GetViper().BindPFlag("receiver.cors-origins", f.Lookup("cors-origin")))
	errPanic(viper.GetViper().BindPFlag("receiver.state-node", f.Lookup("state-node")))

	rootCmd.AddCommand(receiverCmd)
}

type receiverConfig struct {
	logRequests bool
	rateLimit   float64
	rateBurst   int
	corsOrigins []string
}

// newReceiverRouter builds the routes of the receiver.  Webhook events are
// queued on events, metrics are registered with reg.
func newReceiverRouter(cfg receiverConfig, events chan handlers.Event, reg *prometheus.Registry) (*mux.Router, error) {
	metrics, err := middlewares.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	received, err := handlers.NewEventCounter(reg)
	if err != nil {
		return nil, err
	}

	wh := handlers.NewWebhookHandler(events).WithCounter(received)
	sh := handlers.NewStatusHandler(version.Version, func() int { return len(events) })

	r := mux.NewRouter()
	r.Use(middlewares.NewLoggingMw(cfg.logRequests))
	r.Use(middlewares.NewRecoveryMw(metrics.Panics))
	r.Use(middlewares.NewCorrelationMw("X-Correlation-ID"))
	r.Use(middlewares.NewMetricsMw(metrics))
	if cfg.rateLimit > 0 {
		r.Use(middlewares.NewRateLimitMw(cfg.rateLimit, cfg.rateBurst))
	}
	if len(cfg.corsOrigins) > 0 {
		r.Use(middlewares.NewCorsMw(middlewares.CorsOptions(cfg.corsOrigins)))
	}

	r.Handle("/webhook", &wh).Methods(http.MethodPost)
	r.Handle("/status", &sh).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return r, nil
}

// eventProcessor logs received values and, when stateNode is set, stores
// the time of the last event as a specification of that node
func eventProcessor(client netilion.NetilionAPI, stateNode int64) handlers.EventFunc {
	return func(ticket int, event handlers.Event) {
		log := logging.Logger(nil).WithFields(logrus.Fields{
			"txnid":      event.TxnID,
			"event_type": event.Type,
			"worker":     ticket,
		})

		if event.Values != nil {
			for _, v := range event.Values.Values {
				log.Infof("%s: %s", event.Values.Asset, v)
			}
		} else {
			log.Infof("unhandled event: %s", string(event.Content))
		}

		if client == nil || stateNode == 0 {
			return
		}

		if err := client.PatchNodeSpecification(stateNode, "last_event", event.Received.UTC().Format(time.RFC3339)); err != nil {
			log.WithError(err).Errorf("recording last event on node %d", stateNode)
		}
	}
}

func doReceiver() error {
	wait := viper.GetDuration("receiver.graceful-timeout")
	port := viper.GetUint("receiver.port")
	certFile := viper.GetString("receiver.tls-cert")
	keyFile := viper.GetString("receiver.tls-key")
	stateNode := viper.GetInt64("receiver.state-node")

	var logRequests bool
	if viper.GetBool("logging.log-requests") {
		if logrus.IsLevelEnabled(logrus.DebugLevel) {
			logRequests = true
		} else {
			logging.Logger(nil).Warn("log-requests ignored when not in debug mode")
		}
	}

	var client netilion.NetilionAPI
	if stateNode != 0 {
		var err error
		if client, err = newClient(); err != nil {
			return err
		}
	}

	events := make(chan handlers.Event, viper.GetInt("receiver.queue-size"))
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r, err := newReceiverRouter(receiverConfig{
		logRequests: logRequests,
		rateLimit:   viper.GetFloat64("receiver.rate-limit"),
		rateBurst:   viper.GetInt("receiver.rate-burst"),
		corsOrigins: viper.GetStringSlice("receiver.cors-origins"),
	}, events, reg)
	if err != nil {
		return err
	}

	dispatched := make(chan struct{})
	go func() {
		handlers.Dispatch(viper.GetInt("receiver.workers"), events, eventProcessor(client, stateNode))
		close(dispatched)
	}()

	s := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		ReadTimeout:  viper.GetDuration("receiver.read-timeout"),
		WriteTimeout: viper.GetDuration("receiver.write-timeout"),
		IdleTimeout:  time.Second * 60,
		Handler:      r,
	}

	logging.Logger(nil).Infof("Serving on port %d", port)
	go func() {
		var err error
		if certFile != "" {
			err = s.ListenAndServeTLS(certFile, keyFile)
		} else {
			err = s.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logging.Logger(nil).WithError(err).Error("running server")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	// Block until we receive a signal
	<-c

	logging.Logger(nil).Info("shutting down")
	if err := stopReceiver(s, events, dispatched, wait); err != nil {
		logging.Logger(nil).WithError(err).Error("shutting down")
	}

	logging.Logger(nil).Info("exiting")
	return nil
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// stopReceiver stops accepting deliveries, then waits for the queued events
// to be processed.  Each step may take up to wait.  The queue is only closed
// once no handler can send to it any more.
func stopReceiver(s shutdowner, events chan handlers.Event, dispatched <-chan struct{}, wait time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "requests still running, queued events dropped")
	}

	close(events)

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), wait)
	defer cancelDrain()

	select {
	case <-dispatched:
		return nil
	case <-drainCtx.Done():
		return errors.New("events still being processed at exit")
	}
}
