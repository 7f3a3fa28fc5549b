package throttle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClientThrottleValidation(t *testing.T) {
	t.Parallel()

	_, err := NewClientThrottle(nil)
	require.Error(t, err)

	_, err = NewClientThrottle(&ClientThrottleCfg{TotalNPerSec: 0, TotalBurst: 1, ClientNPerSec: 1, ClientBurst: 1})
	require.Error(t, err)

	_, err = NewClientThrottle(&ClientThrottleCfg{TotalNPerSec: 5, TotalBurst: 1, ClientNPerSec: 1, ClientBurst: 1})
	require.Error(t, err)
}

func TestClientThrottleAllow(t *testing.T) {
	t.Parallel()

	th, err := NewClientThrottle(&ClientThrottleCfg{
		TotalNPerSec:  1,
		TotalBurst:    10,
		ClientNPerSec: 1,
		ClientBurst:   2,
	})
	require.NoError(t, err)

	require.True(t, th.Allow("1.1.1.1"))
	require.True(t, th.Allow("1.1.1.1"))
	require.False(t, th.Allow("1.1.1.1"))

	// other clients keep their own budget
	require.True(t, th.Allow("2.2.2.2"))
}

func TestClientThrottleForgetsLeastRecentClients(t *testing.T) {
	t.Parallel()

	th, err := NewClientThrottle(&ClientThrottleCfg{
		TotalNPerSec:  1000,
		TotalBurst:    1000,
		ClientNPerSec: 1,
		ClientBurst:   1,
		MaxClients:    3,
	})
	require.NoError(t, err)

	require.True(t, th.Allow("a"))
	require.False(t, th.Allow("a"))

	for i := 0; i < 100; i++ {
		th.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	require.Equal(t, 3, th.Clients())

	// "a" was evicted, so it starts over with a fresh budget
	require.True(t, th.Allow("a"))
}

func TestNewClientThrottleDefaultMaxClients(t *testing.T) {
	t.Parallel()

	_, err := NewClientThrottle(&ClientThrottleCfg{
		TotalNPerSec: 1, TotalBurst: 1, ClientNPerSec: 1, ClientBurst: 1, MaxClients: -1,
	})
	require.Error(t, err)

	th, err := NewClientThrottle(&ClientThrottleCfg{
		TotalNPerSec: 1, TotalBurst: 1, ClientNPerSec: 1, ClientBurst: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 0, th.Clients())
}

func TestDefaultBurst(t *testing.T) {
	t.Parallel()

	require.Equal(t, 10, DefaultBurst(2, 10))
	require.Equal(t, 40, DefaultBurst(20, 10))
	require.Equal(t, 100, DefaultBurst(50, 0))
}
