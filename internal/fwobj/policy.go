package fwobj

import (
	"encoding/xml"
	"fmt"

	"grimm.is/floe/internal/validation"
)

// Policy special zone references.
const (
	// ZoneHost matches traffic to or from the firewall host itself.
	ZoneHost = "HOST"
	// ZoneAny matches traffic in any zone.
	ZoneAny = "ANY"
)

// policyTargets are the allowed policy default-verdict targets.
var policyTargets = []string{"CONTINUE", "ACCEPT", "DROP", "REJECT"}

// policyPriorityReserved is held by the implicit zone dispatch policy and
// cannot be claimed by user policies.
const policyPriorityReserved = 32767

// Policy filters traffic flowing between zones (or between a zone and the
// host) with an explicit priority.
type Policy struct {
	XMLName xml.Name `xml:"policy"`
	Meta
	PolicyConf
}

// PolicyConf is the payload of a policy.
type PolicyConf struct {
	Version      string         `xml:"version,attr,omitempty"`
	Target       string         `xml:"target,attr,omitempty"`
	Priority     int            `xml:"priority,attr,omitempty"`
	Short        string         `xml:"short,omitempty"`
	Description  string         `xml:"description,omitempty"`
	IngressZones []ZoneRef      `xml:"ingress-zone"`
	EgressZones  []ZoneRef      `xml:"egress-zone"`
	Services     []ServiceRef   `xml:"service"`
	Ports        []Port         `xml:"port"`
	Protocols    []Protocol     `xml:"protocol"`
	IcmpBlocks   []IcmpBlockRef `xml:"icmp-block"`
	Masquerade   *Masquerade    `xml:"masquerade"`
	ForwardPorts []ForwardPort  `xml:"forward-port"`
}

// ZoneRef names a zone, or one of the special values HOST and ANY.
type ZoneRef struct {
	Name string `xml:"name,attr"`
}

func (c PolicyConf) clone() PolicyConf {
	c.IngressZones = append([]ZoneRef(nil), c.IngressZones...)
	c.EgressZones = append([]ZoneRef(nil), c.EgressZones...)
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

func (p *Policy) Kind() Kind { return KindPolicy }

func (p *Policy) Clone() Object {
	c := *p
	c.PolicyConf = p.PolicyConf.clone()
	return &c
}

func (p *Policy) Conf() any { return p.PolicyConf.clone() }

func (p *Policy) SetConf(conf any) error {
	c, ok := conf.(PolicyConf)
	if !ok {
		return fmt.Errorf("policy %q: conf has type %T, want PolicyConf", p.Name, conf)
	}
	p.PolicyConf = c.clone()
	return nil
}

func checkZoneRefs(refs []ZoneRef, all Snapshot, owner, direction string) error {
	special := 0
	named := 0
	for _, ref := range refs {
		switch ref.Name {
		case ZoneHost, ZoneAny:
			special++
		default:
			named++
			if !all.Has(KindZone, ref.Name) {
				return fmt.Errorf("%s references unknown %s zone %q", owner, direction, ref.Name)
			}
		}
	}
	if special > 1 || (special == 1 && named > 0) {
		return fmt.Errorf("%s: %s zones HOST/ANY cannot be combined with other zones", owner, direction)
	}
	return nil
}

// Check validates the payload and verifies every referenced zone, service,
// and ICMP type exists in the merged namespace.
func (p *Policy) Check(all Snapshot) error {
	if err := validation.ValidateObjectName(p.Name, true); err != nil {
		return err
	}
	owner := fmt.Sprintf("policy %q", p.Name)
	if p.Target != "" {
		if err := validation.ValidateAllowlist(p.Target, policyTargets); err != nil {
			return fmt.Errorf("%s: invalid target %q", owner, p.Target)
		}
	}
	if p.Priority == policyPriorityReserved {
		return fmt.Errorf("%s: priority %d is reserved", owner, policyPriorityReserved)
	}
	if len(p.IngressZones) == 0 || len(p.EgressZones) == 0 {
		return fmt.Errorf("%s: ingress and egress zones are required", owner)
	}
	if err := checkZoneRefs(p.IngressZones, all, owner, "ingress"); err != nil {
		return err
	}
	if err := checkZoneRefs(p.EgressZones, all, owner, "egress"); err != nil {
		return err
	}
	if err := checkServiceRefs(p.Services, all, owner); err != nil {
		return err
	}
	if err := checkIcmpBlockRefs(p.IcmpBlocks, all, owner); err != nil {
		return err
	}
	if err := checkPorts(p.Ports, owner); err != nil {
		return err
	}
	for _, proto := range p.Protocols {
		if err := validation.ValidateProtocol(proto.Value); err != nil {
			return fmt.Errorf("%s: %w", owner, err)
		}
	}
	for _, fp := range p.ForwardPorts {
		if err := fp.check(); err != nil {
			return fmt.Errorf("%s: %w", owner, err)
		}
	}
	return nil
}
