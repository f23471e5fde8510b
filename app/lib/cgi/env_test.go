package cgi

import (
	"reflect"
	"testing"
)

func TestEnvironmentWithDoesNotModifyReceiver(t *testing.T) {
	// arrange
	base := Ambient("10.0.0.1", "host", 8080)

	// act
	a := base.With(EnvRemoteAddr, "10.0.0.2")
	b := base.With(EnvRemoteAddr, "10.0.0.3")

	// assert
	if v, _ := base.Lookup(EnvRemoteAddr); v != "10.0.0.1" {
		t.Errorf("expected base to keep its value but got %s", v)
	}
	if v, _ := a.Lookup(EnvRemoteAddr); v != "10.0.0.2" {
		t.Errorf("expected 10.0.0.2 but got %s", v)
	}
	if v, _ := b.Lookup(EnvRemoteAddr); v != "10.0.0.3" {
		t.Errorf("expected 10.0.0.3 but got %s", v)
	}
}

func TestRequestEnvironmentOrder(t *testing.T) {
	// arrange
	script := Script{Name: "/cgi-bin/x", Target: "/srv/x", Query: "q=1"}

	// act
	env := requestEnvironment("HEAD", script).Merge(Ambient("::1", "web", 80))

	// assert
	expected := []string{
		"REQUEST_METHOD=HEAD",
		"QUERY_STRING=q=1",
		"SERVER_PROTOCOL=HTTP/1.0",
		"SCRIPT_NAME=/cgi-bin/x",
		"GATEWAY_INTERFACE=CGI/1.1",
		"REMOTE_ADDR=::1",
		"SERVER_NAME=web",
		"SERVER_PORT=80",
	}
	if !reflect.DeepEqual(env.Strings(), expected) {
		t.Errorf("expected %v but got %v", expected, env.Strings())
	}
}

func TestLookupMissing(t *testing.T) {
	if _, ok := (Environment{}).Lookup(EnvPath); ok {
		t.Error("expected lookup in an empty environment to fail")
	}
}
