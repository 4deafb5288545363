// Package model holds the domain types shared by every layer.
package model

import (
	"sort"
	"strings"
)

// VendorTag identifies a network-appliance management API.
type VendorTag string

const (
	VendorMikroTik VendorTag = "mikrotik"
	VendorOPNsense VendorTag = "opnsense"
	VendorPfSense  VendorTag = "pfsense"
	VendorUniFi    VendorTag = "unifi"
)

var knownVendors = map[VendorTag]struct{}{
	VendorMikroTik: {},
	VendorOPNsense: {},
	VendorPfSense:  {},
	VendorUniFi:    {},
}

// ParseVendorTag normalizes s and reports whether it names a known vendor.
func ParseVendorTag(s string) (VendorTag, bool) {
	tag := VendorTag(strings.ToLower(strings.TrimSpace(s)))
	_, ok := knownVendors[tag]
	return tag, ok
}

// SupportedVendors returns all known vendor tags in lexical order.
func SupportedVendors() []VendorTag {
	tags := make([]VendorTag, 0, len(knownVendors))
	for tag := range knownVendors {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
