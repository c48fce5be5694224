package fwobj

import (
	"encoding/xml"
	"fmt"
	"net"
	"strings"

	"grimm.is/floe/internal/validation"
)

// zoneTargets are the allowed zone default-verdict targets.
var zoneTargets = []string{"default", "ACCEPT", "DROP", "%%REJECT%%"}

// Zone binds interfaces and source matches to a trust level expressed as
// allowed services, ports, and ICMP blocks.
type Zone struct {
	XMLName xml.Name `xml:"zone"`
	Meta
	ZoneConf
}

// ZoneConf is the payload of a zone.
type ZoneConf struct {
	Version      string          `xml:"version,attr,omitempty"`
	Target       string          `xml:"target,attr,omitempty"`
	Short        string          `xml:"short,omitempty"`
	Description  string          `xml:"description,omitempty"`
	Interfaces   []ZoneInterface `xml:"interface"`
	Sources      []ZoneSource    `xml:"source"`
	Services     []ServiceRef    `xml:"service"`
	Ports        []Port          `xml:"port"`
	Protocols    []Protocol      `xml:"protocol"`
	IcmpBlocks   []IcmpBlockRef  `xml:"icmp-block"`
	Masquerade   *Masquerade     `xml:"masquerade"`
	ForwardPorts []ForwardPort   `xml:"forward-port"`
}

// ZoneInterface binds a network interface to the zone.
type ZoneInterface struct {
	Name string `xml:"name,attr"`
}

// ZoneSource matches traffic by source address, address set, or MAC.
type ZoneSource struct {
	Address string `xml:"address,attr,omitempty"`
	AddrSet string `xml:"addrset,attr,omitempty"`
	MAC     string `xml:"mac,attr,omitempty"`
}

func (c ZoneConf) clone() ZoneConf {
	c.Interfaces = append([]ZoneInterface(nil), c.Interfaces...)
	c.Sources = append([]ZoneSource(nil), c.Sources...)
	c.Services = append([]ServiceRef(nil), c.Services...)
	c.Ports = append([]Port(nil), c.Ports...)
	c.Protocols = append([]Protocol(nil), c.Protocols...)
	c.IcmpBlocks = append([]IcmpBlockRef(nil), c.IcmpBlocks...)
	c.ForwardPorts = append([]ForwardPort(nil), c.ForwardPorts...)
	if c.Masquerade != nil {
		m := *c.Masquerade
		c.Masquerade = &m
	}
	return c
}

func (z *Zone) Kind() Kind { return KindZone }

func (z *Zone) Clone() Object {
	c := *z
	c.ZoneConf = z.ZoneConf.clone()
	return &c
}

func (z *Zone) Conf() any { return z.ZoneConf.clone() }

func (z *Zone) SetConf(conf any) error {
	c, ok := conf.(ZoneConf)
	if !ok {
		return fmt.Errorf("zone %q: conf has type %T, want ZoneConf", z.Name, conf)
	}
	z.ZoneConf = c.clone()
	return nil
}

// Check validates the payload and verifies that every referenced service,
// ICMP type, and address set exists in the merged namespace.
func (z *Zone) Check(all Snapshot) error {
	if err := validation.ValidateObjectName(z.Name, true); err != nil {
		return err
	}
	owner := fmt.Sprintf("zone %q", z.Name)
	if z.Target != "" {
		if err := validation.ValidateAllowlist(z.Target, zoneTargets); err != nil {
			return fmt.Errorf("%s: invalid target %q", owner, z.Target)
		}
	}
	for _, iface := range z.Interfaces {
		if iface.Name == "" || len(iface.Name) > 15 {
			return fmt.Errorf("%s: invalid interface name %q", owner, iface.Name)
		}
	}
	for _, src := range z.Sources {
		n := 0
		if src.Address != "" {
			n++
			if err := validation.ValidateIPOrCIDR(src.Address); err != nil {
				return fmt.Errorf("%s: %w", owner, err)
			}
		}
		if src.AddrSet != "" {
			n++
			if !all.Has(KindAddressSet, src.AddrSet) {
				return fmt.Errorf("%s references unknown address set %q", owner, src.AddrSet)
			}
		}
		if src.MAC != "" {
			n++
			if _, err := net.ParseMAC(src.MAC); err != nil || strings.Count(src.MAC, ":") != 5 {
				return fmt.Errorf("%s: invalid source MAC %q", owner, src.MAC)
			}
		}
		if n != 1 {
			return fmt.Errorf("%s: source must set exactly one of address, addrset, mac", owner)
		}
	}
	if err := checkServiceRefs(z.Services, all, owner); err != nil {
		return err
	}
	if err := checkIcmpBlockRefs(z.IcmpBlocks, all, owner); err != nil {
		return err
	}
	if err := checkPorts(z.Ports, owner); err != nil {
		return err
	}
	for _, p := range z.Protocols {
		if err := validation.ValidateProtocol(p.Value); err != nil {
			return fmt.Errorf("%s: %w", owner, err)
		}
	}
	for _, fp := range z.ForwardPorts {
		if err := fp.check(); err != nil {
			return fmt.Errorf("%s: %w", owner, err)
		}
	}
	return nil
}
