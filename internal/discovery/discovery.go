// Package discovery finds a room server on the local network over mDNS.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Prannn182/CodeCollab-Frontend/pkg/logger"
	"github.com/grandcat/zeroconf"
)

// DefaultTimeout bounds a browse when the caller's context has no deadline.
const DefaultTimeout = 5 * time.Second

// ErrNotFound is returned when no instance answered before the deadline.
var ErrNotFound = errors.New("no room server found")

// Server is a resolved service instance.
type Server struct {
	Instance string
	URL      string
}

// Discover browses service in the local domain and returns the first
// instance with a usable address.
func Discover(ctx context.Context, service string) (Server, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return Server{}, fmt.Errorf("init mDNS resolver: %w", err)
	}

	browseCtx, stop := context.WithCancel(ctx)
	defer stop()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(browseCtx, service, "local.", entries); err != nil {
		return Server{}, fmt.Errorf("browse %s: %w", service, err)
	}
	logger.Debugf("discovery: browsing %s", service)

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return Server{}, ErrNotFound
			}
			srv, err := FromEntry(entry)
			if err != nil {
				logger.Debugf("discovery: skipping %s: %v", entry.Instance, err)
				continue
			}
			logger.Infof("discovery: found %s at %s", srv.Instance, srv.URL)
			return srv, nil
		case <-ctx.Done():
			return Server{}, ErrNotFound
		}
	}
}

// FromEntry builds a Server from a resolved entry. A "scheme=" TXT record
// selects http or https; IPv4 addresses are preferred.
func FromEntry(entry *zeroconf.ServiceEntry) (Server, error) {
	if entry == nil || entry.Port == 0 {
		return Server{}, errors.New("entry has no port")
	}

	var host string
	switch {
	case len(entry.AddrIPv4) > 0:
		host = entry.AddrIPv4[0].String()
	case len(entry.AddrIPv6) > 0:
		host = entry.AddrIPv6[0].String()
	case entry.HostName != "":
		host = strings.TrimSuffix(entry.HostName, ".")
	default:
		return Server{}, errors.New("entry has no address")
	}

	scheme := "http"
	for _, txt := range entry.Text {
		if v, ok := strings.CutPrefix(txt, "scheme="); ok && (v == "http" || v == "https") {
			scheme = v
		}
	}

	return Server{
		Instance: entry.Instance,
		URL:      scheme + "://" + net.JoinHostPort(host, strconv.Itoa(entry.Port)),
	}, nil
}
