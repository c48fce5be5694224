package fwobj

import (
	"encoding/xml"
	"fmt"
	"net"

	"grimm.is/floe/internal/validation"
)

// Service bundles the ports, protocols, and helper modules a network service
// needs, so zones and policies can allow it by name.
type Service struct {
	XMLName xml.Name `xml:"service"`
	Meta
	ServiceConf
}

// ServiceConf is the payload of a service.
type ServiceConf struct {
	Version     string              `xml:"version,attr,omitempty"`
	Short       string              `xml:"short,omitempty"`
	Description string              `xml:"description,omitempty"`
	Ports       []Port              `xml:"port"`
	Protocols   []Protocol          `xml:"protocol"`
	SourcePorts []Port              `xml:"source-port"`
	Helpers     []HelperRef         `xml:"helper"`
	Includes    []Include           `xml:"include"`
	Destination *ServiceDestination `xml:"destination"`
}

// HelperRef names a connection tracking helper the service needs.
type HelperRef struct {
	Name string `xml:"name,attr"`
}

// Include pulls another service's definition into this one.
type Include struct {
	Service string `xml:"service,attr"`
}

// ServiceDestination narrows the service to specific destination addresses.
type ServiceDestination struct {
	IPv4 string `xml:"ipv4,attr,omitempty"`
	IPv6 string `xml:"ipv6,attr,omitempty"`
}

func (c ServiceConf) clone() ServiceConf {
	c.Ports = append([]Port(nil), c.Ports...)
	c.Protocols = append([]Protocol(nil), c.Protocols...)
	c.SourcePorts = append([]Port(nil), c.SourcePorts...)
	c.Helpers = append([]HelperRef(nil), c.Helpers...)
	c.Includes = append([]Include(nil), c.Includes...)
	if c.Destination != nil {
		d := *c.Destination
		c.Destination = &d
	}
	return c
}

func (s *Service) Kind() Kind { return KindService }

func (s *Service) Clone() Object {
	c := *s
	c.ServiceConf = s.ServiceConf.clone()
	return &c
}

func (s *Service) Conf() any { return s.ServiceConf.clone() }

func (s *Service) SetConf(conf any) error {
	c, ok := conf.(ServiceConf)
	if !ok {
		return fmt.Errorf("service %q: conf has type %T, want ServiceConf", s.Name, conf)
	}
	s.ServiceConf = c.clone()
	return nil
}

// Check validates the payload and verifies that every referenced helper and
// included service exists in the merged namespace.
func (s *Service) Check(all Snapshot) error {
	if err := validation.ValidateObjectName(s.Name, false); err != nil {
		return err
	}
	owner := fmt.Sprintf("service %q", s.Name)
	if err := checkPorts(s.Ports, owner); err != nil {
		return err
	}
	if err := checkPorts(s.SourcePorts, owner); err != nil {
		return err
	}
	for _, p := range s.Protocols {
		if err := validation.ValidateProtocol(p.Value); err != nil {
			return fmt.Errorf("%s: %w", owner, err)
		}
	}
	for _, h := range s.Helpers {
		if !all.Has(KindHelper, h.Name) {
			return fmt.Errorf("%s references unknown helper %q", owner, h.Name)
		}
	}
	for _, inc := range s.Includes {
		if inc.Service == s.Name {
			return fmt.Errorf("%s includes itself", owner)
		}
		if !all.Has(KindService, inc.Service) {
			return fmt.Errorf("%s includes unknown service %q", owner, inc.Service)
		}
	}
	if d := s.Destination; d != nil {
		if d.IPv4 != "" {
			if ip := net.ParseIP(d.IPv4); ip == nil || ip.To4() == nil {
				if err := validation.ValidateIPOrCIDR(d.IPv4); err != nil {
					return fmt.Errorf("%s: invalid ipv4 destination %q", owner, d.IPv4)
				}
			}
		}
		if d.IPv6 != "" {
			if err := validation.ValidateIPOrCIDR(d.IPv6); err != nil {
				return fmt.Errorf("%s: invalid ipv6 destination %q", owner, d.IPv6)
			}
		}
	}
	return nil
}
