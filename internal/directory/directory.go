package directory

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/prasetyow/warecash/internal/config"
	"github.com/prasetyow/warecash/internal/logging"
)

// Identity is the read-only view of a directory account. It is re-fetched on
// every login and never persisted as-is.
type Identity struct {
	Username    string
	Description string
	DisplayName string
	OfficeName  string
}

// Directory authenticates a username/password pair against an external
// LDAP/AD server and returns the account's attributes.
type Directory interface {
	Authenticate(ctx context.Context, username, password string) (*Identity, error)
}

type Client struct {
	Config config.LDAPConfig
}

func NewClient(cfg config.LDAPConfig) *Client {
	return &Client{Config: cfg}
}

const dialTimeout = 5 * time.Second

func (c *Client) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	l := logging.FromContext(ctx).With("svc", "directory")

	addr := fmt.Sprintf("ldap://%s:%d", c.Config.Host, c.Config.Port)
	conn, err := ldap.DialURL(addr, ldap.DialWithDialer(&net.Dialer{Timeout: dialTimeout}))
	if err != nil {
		l.Warn("ldap dial failed", "addr", addr, "error", err)
		return nil, fmt.Errorf("directory dial: %w", err)
	}
	defer conn.Close()

	bindDN := fmt.Sprintf("%s@%s", username, c.Config.Domain)
	if err := conn.Bind(bindDN, password); err != nil {
		l.Warn("ldap bind failed", "user", username, "error", err)
		return nil, fmt.Errorf("directory bind: %w", err)
	}

	req := ldap.NewSearchRequest(
		c.Config.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 1, 0, false,
		fmt.Sprintf("(sAMAccountName=%s)", ldap.EscapeFilter(username)),
		[]string{"description", "displayName", "physicalDeliveryOfficeName"},
		nil,
	)
	res, err := conn.Search(req)
	if err != nil {
		l.Warn("ldap search failed", "user", username, "error", err)
		return nil, fmt.Errorf("directory search: %w", err)
	}
	if len(res.Entries) == 0 {
		return nil, fmt.Errorf("directory search: no entry for %s", username)
	}

	entry := res.Entries[0]
	return &Identity{
		Username:    username,
		Description: entry.GetAttributeValue("description"),
		DisplayName: entry.GetAttributeValue("displayName"),
		OfficeName:  entry.GetAttributeValue("physicalDeliveryOfficeName"),
	}, nil
}
