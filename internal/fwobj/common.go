package fwobj

import (
	"fmt"
	"net"

	"grimm.is/floe/internal/validation"
)

// Shared XML fragments used by several kinds.

// Port is a port or port range bound to a protocol.
type Port struct {
	Port     string `xml:"port,attr"`
	Protocol string `xml:"protocol,attr"`
}

func (p Port) check() error {
	if err := validation.ValidateProtocol(p.Protocol); err != nil {
		return err
	}
	// Plain protocol entries like <port protocol="gre"/> carry no port.
	if p.Port == "" {
		return nil
	}
	return validation.ValidatePort(p.Port)
}

// Protocol is a bare IP protocol reference.
type Protocol struct {
	Value string `xml:"value,attr"`
}

// ServiceRef names a service defined elsewhere.
type ServiceRef struct {
	Name string `xml:"name,attr"`
}

// IcmpBlockRef names an ICMP type to block.
type IcmpBlockRef struct {
	Name string `xml:"name,attr"`
}

// Masquerade marks NAT masquerading as enabled by its presence.
type Masquerade struct{}

// ForwardPort redirects a port to another port and/or address.
type ForwardPort struct {
	Port     string `xml:"port,attr"`
	Protocol string `xml:"protocol,attr"`
	ToPort   string `xml:"to-port,attr,omitempty"`
	ToAddr   string `xml:"to-addr,attr,omitempty"`
}

func (f ForwardPort) check() error {
	if err := validation.ValidatePort(f.Port); err != nil {
		return err
	}
	if err := validation.ValidateProtocol(f.Protocol); err != nil {
		return err
	}
	if f.ToPort == "" && f.ToAddr == "" {
		return fmt.Errorf("forward-port %s/%s: need to-port or to-addr", f.Port, f.Protocol)
	}
	if f.ToPort != "" {
		if err := validation.ValidatePort(f.ToPort); err != nil {
			return err
		}
	}
	if f.ToAddr != "" {
		if net.ParseIP(f.ToAddr) == nil {
			return fmt.Errorf("forward-port: invalid to-addr %q", f.ToAddr)
		}
	}
	return nil
}

func checkServiceRefs(refs []ServiceRef, all Snapshot, owner string) error {
	for _, ref := range refs {
		if !all.Has(KindService, ref.Name) {
			return fmt.Errorf("%s references unknown service %q", owner, ref.Name)
		}
	}
	return nil
}

func checkIcmpBlockRefs(refs []IcmpBlockRef, all Snapshot, owner string) error {
	for _, ref := range refs {
		if !all.Has(KindIcmpType, ref.Name) {
			return fmt.Errorf("%s references unknown icmp type %q", owner, ref.Name)
		}
	}
	return nil
}

func checkPorts(ports []Port, owner string) error {
	for _, p := range ports {
		if err := p.check(); err != nil {
			return fmt.Errorf("%s: %w", owner, err)
		}
	}
	return nil
}
