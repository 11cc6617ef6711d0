package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when the configured prefix is empty.
const DefaultTopicPrefix = "posbridge"

// Topics builds the bridge's MQTT topics under a common prefix.
//
//	topics := mqtt.Topics{Prefix: "shop1/posbridge"}
//	topics.CommandEvent("print", "p1") // "shop1/posbridge/commands/print/p1"
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	p := strings.Trim(t.Prefix, "/")
	if p == "" {
		return DefaultTopicPrefix
	}
	return p
}

// CommandEvent returns the topic a handled command is published on.
// Commands without a device, such as auth, omit the last level.
//
// Example: posbridge/commands/open_drawer/d1
func (t Topics) CommandEvent(command, deviceID string) string {
	if deviceID == "" {
		return fmt.Sprintf("%s/commands/%s", t.prefix(), segment(command))
	}
	return fmt.Sprintf("%s/commands/%s/%s", t.prefix(), segment(command), segment(deviceID))
}

// BridgeStatus returns the retained online/offline status topic.
//
// Example: posbridge/status
func (t Topics) BridgeStatus() string {
	return t.prefix() + "/status"
}

// AllCommandEvents returns a wildcard matching every command event.
func (t Topics) AllCommandEvents() string {
	return t.prefix() + "/commands/#"
}

// segment makes s safe to use as a single topic level. Device ids come from
// configuration and may contain separators or wildcards.
func segment(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '+', '#', 0:
			return '_'
		}
		return r
	}, s)
}
