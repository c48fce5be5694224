package fwobj

import (
	"encoding/xml"
	"fmt"

	"grimm.is/floe/internal/validation"
)

// knownSetTypes are the set types the nftables backend can materialize.
var knownSetTypes = []string{
	"hash:ip",
	"hash:ip,port",
	"hash:ip,port,ip",
	"hash:ip,port,net",
	"hash:ip,mark",
	"hash:net",
	"hash:net,net",
	"hash:net,port",
	"hash:net,iface",
	"hash:mac",
}

// AddressSet is a named set of addresses, networks, or MACs that zones can
// match sources against.
type AddressSet struct {
	XMLName xml.Name `xml:"addrset"`
	Meta
	AddressSetConf
}

// AddressSetConf is the payload of an address set.
type AddressSetConf struct {
	Version     string          `xml:"version,attr,omitempty"`
	Type        string          `xml:"type,attr"`
	Short       string          `xml:"short,omitempty"`
	Description string          `xml:"description,omitempty"`
	Options     []AddrSetOption `xml:"option"`
	Entries     []AddressEntry  `xml:"entry"`
}

// AddrSetOption is a set creation option such as family or maxelem.
type AddrSetOption struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr,omitempty"`
}

// AddressEntry is a single set member.
type AddressEntry struct {
	Value string `xml:",chardata"`
}

func (c AddressSetConf) clone() AddressSetConf {
	c.Options = append([]AddrSetOption(nil), c.Options...)
	c.Entries = append([]AddressEntry(nil), c.Entries...)
	return c
}

func (a *AddressSet) Kind() Kind { return KindAddressSet }

func (a *AddressSet) Clone() Object {
	c := *a
	c.AddressSetConf = a.AddressSetConf.clone()
	return &c
}

func (a *AddressSet) Conf() any { return a.AddressSetConf.clone() }

func (a *AddressSet) SetConf(conf any) error {
	c, ok := conf.(AddressSetConf)
	if !ok {
		return fmt.Errorf("address set %q: conf has type %T, want AddressSetConf", a.Name, conf)
	}
	a.AddressSetConf = c.clone()
	return nil
}

// Check validates names, the set type, and options. Address sets reference
// no other kinds, so the snapshot is unused.
func (a *AddressSet) Check(all Snapshot) error {
	if err := validation.ValidateObjectName(a.Name, false); err != nil {
		return err
	}
	if err := validation.ValidateAllowlist(a.Type, knownSetTypes); err != nil {
		return fmt.Errorf("address set %q: unsupported type %q", a.Name, a.Type)
	}
	for _, opt := range a.Options {
		switch opt.Name {
		case "family":
			if err := validation.ValidateAllowlist(opt.Value, []string{"inet", "inet6"}); err != nil {
				return fmt.Errorf("address set %q: invalid family %q", a.Name, opt.Value)
			}
		case "timeout", "hashsize", "maxelem":
			// numeric options; the backend rejects out-of-range values
		default:
			return fmt.Errorf("address set %q: unknown option %q", a.Name, opt.Name)
		}
	}
	return nil
}
