package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "error", StatusClass(0))
	assert.Equal(t, "2xx", StatusClass(204))
	assert.Equal(t, "3xx", StatusClass(304))
	assert.Equal(t, "4xx", StatusClass(429))
	assert.Equal(t, "5xx", StatusClass(503))
}
