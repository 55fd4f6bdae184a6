// Copyright 2024 Erraggy
// SPDX-License-Identifier: MIT

package pathutil

// Local component reference prefixes (§3 "x-origin", §4.7).
const (
	RefPrefixSchemas          = "#/components/schemas/"
	RefPrefixChannels         = "#/channels/"
	RefPrefixComponentChannel = "#/components/channels/"
)

// SchemaRef builds "#/components/schemas/{name}".
func SchemaRef(name string) string {
	return RefPrefixSchemas + name
}

// ChannelRef builds "#/channels/{name}".
func ChannelRef(name string) string {
	return RefPrefixChannels + name
}

// ComponentChannelRef builds "#/components/channels/{name}".
func ComponentChannelRef(name string) string {
	return RefPrefixComponentChannel + name
}

// IsLocalRef reports whether ref begins with "#", i.e. is an internal
// JSON pointer rather than an external file reference (§3 "x-origin").
func IsLocalRef(ref string) bool {
	return len(ref) > 0 && ref[0] == '#'
}
