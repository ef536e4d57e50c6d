// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests manager defaults and service entry conversion
package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
)

func TestNewManagerDefaults(t *testing.T) {
	mgr := NewManager(Config{ServiceName: "Test Box", Port: 8930})
	defer mgr.Stop()

	if mgr.config.Path != "/soundbox" {
		t.Errorf("expected default path /soundbox, got %s", mgr.config.Path)
	}
	if mgr.config.Timeout != 3*time.Second {
		t.Errorf("expected default timeout 3s, got %v", mgr.config.Timeout)
	}
}

func TestEntryToServer(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:       "Kitchen._soundbox._tcp.local.",
		AddrV4:     net.ParseIP("192.168.1.20"),
		Port:       8930,
		InfoFields: []string{"path=/custom"},
	}

	server := entryToServer(entry)
	if server == nil {
		t.Fatal("expected server")
	}
	if server.Name != "Kitchen" {
		t.Errorf("expected name Kitchen, got %s", server.Name)
	}
	if server.Addr() != "192.168.1.20:8930" {
		t.Errorf("unexpected addr %s", server.Addr())
	}
	if server.Path != "/custom" {
		t.Errorf("expected path /custom, got %s", server.Path)
	}
}

func TestEntryToServerSkipsIPv6Only(t *testing.T) {
	entry := &mdns.ServiceEntry{Name: "x", AddrV6: net.ParseIP("fe80::1"), Port: 1}
	if entryToServer(entry) != nil {
		t.Error("expected entry without IPv4 to be skipped")
	}
}
