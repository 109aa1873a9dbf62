package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldProcess_FirstSeen(t *testing.T) {
	d := New(time.Minute, 10)
	assert.True(t, d.ShouldProcess("a"))
	assert.False(t, d.ShouldProcess("a"))
	assert.True(t, d.ShouldProcess("b"))
}

func TestShouldProcess_EmptyID(t *testing.T) {
	d := New(time.Minute, 10)
	assert.True(t, d.ShouldProcess(""))
	assert.True(t, d.ShouldProcess(""))
}

func TestShouldProcess_TTLExpiry(t *testing.T) {
	d := New(10*time.Millisecond, 10)
	assert.True(t, d.ShouldProcess("a"))
	time.Sleep(20 * time.Millisecond)
	assert.True(t, d.ShouldProcess("a"))
}

func TestNew_Defaults(t *testing.T) {
	d := New(0, 0)
	assert.Equal(t, 10*time.Minute, d.ttl)
	assert.Equal(t, 10000, d.max)
}
