package fwobj

import (
	"encoding/xml"
	"fmt"

	"grimm.is/floe/internal/validation"
)

// IcmpType names an ICMP or ICMPv6 message type that zones and policies can
// block.
type IcmpType struct {
	XMLName xml.Name `xml:"icmptype"`
	Meta
	IcmpTypeConf
}

// IcmpTypeConf is the payload of an ICMP type.
type IcmpTypeConf struct {
	Version     string           `xml:"version,attr,omitempty"`
	Short       string           `xml:"short,omitempty"`
	Description string           `xml:"description,omitempty"`
	Destination *IcmpDestination `xml:"destination"`
}

// IcmpDestination restricts the address families the type applies to.
// Attribute values follow the on-disk convention of "yes" or absent.
type IcmpDestination struct {
	IPv4 string `xml:"ipv4,attr,omitempty"`
	IPv6 string `xml:"ipv6,attr,omitempty"`
}

func (c IcmpTypeConf) clone() IcmpTypeConf {
	if c.Destination != nil {
		d := *c.Destination
		c.Destination = &d
	}
	return c
}

// AppliesTo reports whether the type is valid for the given family
// ("ipv4" or "ipv6"). An absent destination element means both.
func (c IcmpTypeConf) AppliesTo(family string) bool {
	if c.Destination == nil {
		return true
	}
	switch family {
	case "ipv4":
		return c.Destination.IPv4 == "yes"
	case "ipv6":
		return c.Destination.IPv6 == "yes"
	}
	return false
}

func (i *IcmpType) Kind() Kind { return KindIcmpType }

func (i *IcmpType) Clone() Object {
	c := *i
	c.IcmpTypeConf = i.IcmpTypeConf.clone()
	return &c
}

func (i *IcmpType) Conf() any { return i.IcmpTypeConf.clone() }

func (i *IcmpType) SetConf(conf any) error {
	c, ok := conf.(IcmpTypeConf)
	if !ok {
		return fmt.Errorf("icmp type %q: conf has type %T, want IcmpTypeConf", i.Name, conf)
	}
	i.IcmpTypeConf = c.clone()
	return nil
}

// Check validates the name and destination families. ICMP types reference no
// other kinds.
func (i *IcmpType) Check(all Snapshot) error {
	if err := validation.ValidateObjectName(i.Name, false); err != nil {
		return err
	}
	if d := i.Destination; d != nil {
		for _, v := range []string{d.IPv4, d.IPv6} {
			if v != "" && v != "yes" {
				return fmt.Errorf("icmp type %q: destination attribute must be \"yes\", got %q", i.Name, v)
			}
		}
		if d.IPv4 == "" && d.IPv6 == "" {
			return fmt.Errorf("icmp type %q: destination element restricts no family", i.Name)
		}
	}
	return nil
}
