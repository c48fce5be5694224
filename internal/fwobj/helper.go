package fwobj

import (
	"encoding/xml"
	"fmt"
	"strings"

	"grimm.is/floe/internal/validation"
)

// Helper is a connection tracking helper module binding (such as the FTP or
// SIP trackers) that services can request.
type Helper struct {
	XMLName xml.Name `xml:"helper"`
	Meta
	HelperConf
}

// HelperConf is the payload of a helper.
type HelperConf struct {
	Version     string `xml:"version,attr,omitempty"`
	Module      string `xml:"module,attr"`
	Family      string `xml:"family,attr,omitempty"`
	Short       string `xml:"short,omitempty"`
	Description string `xml:"description,omitempty"`
	Ports       []Port `xml:"port"`
}

func (c HelperConf) clone() HelperConf {
	c.Ports = append([]Port(nil), c.Ports...)
	return c
}

func (h *Helper) Kind() Kind { return KindHelper }

func (h *Helper) Clone() Object {
	c := *h
	c.HelperConf = h.HelperConf.clone()
	return &c
}

func (h *Helper) Conf() any { return h.HelperConf.clone() }

func (h *Helper) SetConf(conf any) error {
	c, ok := conf.(HelperConf)
	if !ok {
		return fmt.Errorf("helper %q: conf has type %T, want HelperConf", h.Name, conf)
	}
	h.HelperConf = c.clone()
	return nil
}

// Check validates the module name, family, and ports. Helpers reference no
// other kinds.
func (h *Helper) Check(all Snapshot) error {
	if err := validation.ValidateObjectName(h.Name, false); err != nil {
		return err
	}
	if !strings.HasPrefix(h.Module, "nf_conntrack_") {
		return fmt.Errorf("helper %q: module %q does not start with nf_conntrack_", h.Name, h.Module)
	}
	if h.Family != "" {
		if err := validation.ValidateAllowlist(h.Family, []string{"ipv4", "ipv6"}); err != nil {
			return fmt.Errorf("helper %q: invalid family %q", h.Name, h.Family)
		}
	}
	return checkPorts(h.Ports, fmt.Sprintf("helper %q", h.Name))
}
