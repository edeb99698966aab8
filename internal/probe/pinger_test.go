package probe

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newRawPinger skips the test when the environment does not allow raw
// ICMP sockets.
func newRawPinger(t *testing.T) *ICMPPinger {
	t.Helper()
	pinger, err := NewICMPPinger()
	if err != nil {
		t.Skipf("raw ICMP sockets unavailable: %v", err)
	}
	return pinger
}

func TestICMPPinger_Loopback(t *testing.T) {
	pinger := newRawPinger(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, pinger.Ping(ctx, "127.0.0.1"))
}

// A reply from a live host must not satisfy a concurrently pending ping
// of a different, silent host. 192.0.2.1 (TEST-NET-1) never answers, so
// its ping has to time out even while loopback replies keep arriving on
// the shared raw socket.
func TestICMPPinger_IgnoresRepliesFromOtherHosts(t *testing.T) {
	pinger := newRawPinger(t)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			_ = pinger.Ping(ctx, "127.0.0.1")
			cancel()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := pinger.Ping(ctx, "192.0.2.1")

	close(stop)
	wg.Wait()

	assert.Error(t, err, "silent host reported reachable")
}

func TestICMPPinger_UnresolvableHost(t *testing.T) {
	pinger := newRawPinger(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.Error(t, pinger.Ping(ctx, "definitely-not-a-real-hostname.invalid"))
}
