package logging

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerCarriesRequestIDs(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	ctx := WithCorrelationID(WithTxnID(context.Background(), "txn-1"), "corr-1")
	Logger(ctx).Info("hello")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "txn-1", entry.Data["txnid"])
	assert.Equal(t, "corr-1", entry.Data["correlationid"])

	Logger(context.Background()).Info("plain")
	assert.NotContains(t, hook.LastEntry().Data, "txnid")

	Logger(nil).Info("nil context")
	assert.Equal(t, "nil context", hook.LastEntry().Message)
}

func TestTxnID(t *testing.T) {
	_, ok := TxnID(nil)
	assert.False(t, ok)

	id, ok := TxnID(WithTxnID(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
}

func TestConfigure(t *testing.T) {
	level := logrus.GetLevel()
	formatter := logrus.StandardLogger().Formatter
	t.Cleanup(func() {
		logrus.SetLevel(level)
		logrus.SetFormatter(formatter)
		v := viper.New()
		v.Set(KeyLocation, "stderr")
		_ = Configure(v)
	})

	tests := []struct {
		name     string
		settings map[string]string
		wantErr  bool
	}{
		{name: "defaults", settings: map[string]string{KeyLocation: "stderr", KeyLevel: "info"}},
		{name: "json to file", settings: map[string]string{KeyLocation: filepath.Join(t.TempDir(), "netilion.log"), KeyFormat: "json", KeyLevel: "warn"}},
		{name: "bad level", settings: map[string]string{KeyLocation: "stderr", KeyLevel: "chatty"}, wantErr: true},
		{name: "bad format", settings: map[string]string{KeyLocation: "stderr", KeyLevel: "info", KeyFormat: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logrus.SetLevel(logrus.InfoLevel)

			v := viper.New()
			for k, val := range tt.settings {
				v.Set(k, val)
			}

			err := Configure(v)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
