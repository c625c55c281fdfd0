package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert := assert.New(t)
	reg := prometheus.NewRegistry()

	m, err := New(reg)
	assert.Nil(err)

	m.MessagesCommitted.WithLabelValues("text").Inc()
	m.MessagesCommitted.WithLabelValues("text").Inc()
	m.AccessChecks.WithLabelValues("denied").Inc()

	assert.Equal(2.0, testutil.ToFloat64(m.MessagesCommitted.WithLabelValues("text")))
	assert.Equal(1.0, testutil.ToFloat64(m.AccessChecks.WithLabelValues("denied")))

	_, err = New(reg)
	assert.NotNil(err)
}
