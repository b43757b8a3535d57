//go:build linux

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendOnlyAddr_NoProtocol(t *testing.T) {
	ll := sendOnlyAddr(7)
	assert.Zero(t, ll.Protocol)
	assert.Equal(t, 7, ll.Ifindex)
}
