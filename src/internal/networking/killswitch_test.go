package networking

import (
	"reflect"
	"testing"
)

func TestKillSwitchRules_Minimal(t *testing.T) {
	rules := killSwitchRules(KillSwitchOptions{InterfaceName: "pia"})

	expected := [][]string{
		{"-o", "lo", "-j", "ACCEPT"},
		{"-o", "pia", "-j", "ACCEPT"},
		{"-j", "DROP"},
	}
	if !reflect.DeepEqual(rules, expected) {
		t.Errorf("killSwitchRules() = %v, want %v", rules, expected)
	}
}

func TestKillSwitchRules_EndpointAndLAN(t *testing.T) {
	rules := killSwitchRules(KillSwitchOptions{
		InterfaceName: "pia",
		EndpointIP:    "203.0.113.7",
		AllowLAN:      true,
	})

	expected := [][]string{
		{"-o", "lo", "-j", "ACCEPT"},
		{"-o", "pia", "-j", "ACCEPT"},
		{"-d", "203.0.113.7", "-p", "udp", "-j", "ACCEPT"},
		{"-d", "10.0.0.0/8", "-j", "ACCEPT"},
		{"-d", "172.16.0.0/12", "-j", "ACCEPT"},
		{"-d", "192.168.0.0/16", "-j", "ACCEPT"},
		{"-j", "DROP"},
	}
	if !reflect.DeepEqual(rules, expected) {
		t.Errorf("killSwitchRules() = %v, want %v", rules, expected)
	}
}

func TestKillSwitchRules_DropIsLast(t *testing.T) {
	rules := killSwitchRules(KillSwitchOptions{
		InterfaceName: "wg0",
		EndpointIP:    "198.51.100.1",
		AllowLAN:      true,
	})
	last := rules[len(rules)-1]
	if !reflect.DeepEqual(last, []string{"-j", "DROP"}) {
		t.Errorf("last rule = %v, want DROP", last)
	}
}
