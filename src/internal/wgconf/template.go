package wgconf

import (
	"io"
	"strconv"

	"github.com/valyala/fasttemplate"
)

// Template variables understood by tunnelTemplate.
const (
	TMPL_ADDRESS     = "address"
	TMPL_PRIVATE_KEY = "private_key"
	TMPL_DNS_LINE    = "dns_line"
	TMPL_KEEPALIVE   = "keepalive"
	TMPL_SERVER_KEY  = "server_key"
	TMPL_ALLOWED_IPS = "allowed_ips"
	TMPL_ENDPOINT    = "endpoint"
)

const tunnelTemplate = `[Interface]
Address = {{address}}
PrivateKey = {{private_key}}
{{dns_line}}[Peer]
PersistentKeepalive = {{keepalive}}
PublicKey = {{server_key}}
AllowedIPs = {{allowed_ips}}
Endpoint = {{endpoint}}
`

// TunnelIdentity carries the fields of one tunnel identity as returned
// by a key exchange. DNS is optional: when empty, no DNS line is
// rendered and no DNS update is produced.
type TunnelIdentity struct {
	Address    string
	PrivateKey string
	DNS        string
	ServerKey  string
	Endpoint   string
	AllowedIPs string
	Keepalive  int
}

// RenderFresh renders a complete tunnel config document for an identity.
// Used when no config file exists yet; an existing file is merged via
// Updates instead.
func RenderFresh(id TunnelIdentity) string {
	allowedIPs := id.AllowedIPs
	if allowedIPs == "" {
		allowedIPs = "0.0.0.0/0"
	}
	keepalive := id.Keepalive
	if keepalive <= 0 {
		keepalive = 25
	}

	t := fasttemplate.New(tunnelTemplate, "{{", "}}")
	return t.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		switch tag {
		case TMPL_ADDRESS:
			return w.Write([]byte(id.Address))
		case TMPL_PRIVATE_KEY:
			return w.Write([]byte(id.PrivateKey))
		case TMPL_DNS_LINE:
			if id.DNS == "" {
				return 0, nil
			}
			return w.Write([]byte("DNS = " + id.DNS + "\n"))
		case TMPL_KEEPALIVE:
			return w.Write([]byte(strconv.Itoa(keepalive)))
		case TMPL_SERVER_KEY:
			return w.Write([]byte(id.ServerKey))
		case TMPL_ALLOWED_IPS:
			return w.Write([]byte(allowedIPs))
		case TMPL_ENDPOINT:
			return w.Write([]byte(id.Endpoint))
		default:
			return 0, nil
		}
	})
}

// Updates returns the field updates to merge this identity into an
// existing document. AllowedIPs and PersistentKeepalive are deliberately
// not part of the set: an existing file may carry operator overrides for
// them and those must survive a reconnect.
func (id TunnelIdentity) Updates() []FieldUpdate {
	return []FieldUpdate{
		NewFieldUpdate("Address", id.Address, AfterSection("[Interface]")),
		NewFieldUpdate("PrivateKey", id.PrivateKey, AfterField("Address")),
		NewFieldUpdate("DNS", id.DNS, AfterField("PrivateKey")),
		NewFieldUpdate("PublicKey", id.ServerKey, AfterSection("[Peer]")),
		NewFieldUpdate("Endpoint", id.Endpoint, AfterField("PublicKey")),
	}
}
