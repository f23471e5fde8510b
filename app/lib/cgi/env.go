package cgi

import (
	"strconv"
)

var (
	EnvRequestMethod    = "REQUEST_METHOD"
	EnvQueryString      = "QUERY_STRING"
	EnvServerProtocol   = "SERVER_PROTOCOL"
	EnvScriptName       = "SCRIPT_NAME"
	EnvGatewayInterface = "GATEWAY_INTERFACE"
	EnvRemoteAddr       = "REMOTE_ADDR"
	EnvServerName       = "SERVER_NAME"
	EnvServerPort       = "SERVER_PORT"
	EnvPath             = "PATH"
)

var (
	ServerProtocol   = "HTTP/1.0"
	GatewayInterface = "CGI/1.1"
)

type Variable struct {
	Name  string
	Value string
}

// Environment is an ordered set of variables handed to a single CGI child.
// Methods never modify the receiver, so a value can be shared between
// invocations safely.
type Environment []Variable

// With returns a copy of e with name set to value, replacing an existing
// entry in place or appending a new one.
func (e Environment) With(name string, value string) Environment {
	out := make(Environment, len(e), len(e)+1)
	copy(out, e)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Variable{Name: name, Value: value})
}

func (e Environment) Merge(other Environment) Environment {
	out := e
	for _, v := range other {
		out = out.With(v.Name, v.Value)
	}
	return out
}

func (e Environment) Lookup(name string) (string, bool) {
	for _, v := range e {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Strings renders e in the NAME=value form exec.Cmd expects.
func (e Environment) Strings() []string {
	out := make([]string, 0, len(e))
	for _, v := range e {
		out = append(out, v.Name+"="+v.Value)
	}
	return out
}

// Ambient builds the per-connection variables the dispatcher supplies.
func Ambient(remoteAddr string, serverName string, serverPort int) Environment {
	return Environment{
		{Name: EnvRemoteAddr, Value: remoteAddr},
		{Name: EnvServerName, Value: serverName},
		{Name: EnvServerPort, Value: strconv.Itoa(serverPort)},
	}
}

func requestEnvironment(method string, script Script) Environment {
	return Environment{
		{Name: EnvRequestMethod, Value: method},
		{Name: EnvQueryString, Value: script.Query},
		{Name: EnvServerProtocol, Value: ServerProtocol},
		{Name: EnvScriptName, Value: script.Name},
		{Name: EnvGatewayInterface, Value: GatewayInterface},
	}
}
