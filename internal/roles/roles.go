// Package roles maps the free-text "description" attribute coming from the
// directory onto a closed set of application roles. Accounts whose description
// is not in the table are not provisioned for this application at all.
package roles

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleSales     Role = "SALES"
	RoleWarehouse Role = "WAREHOUSE"
)

var byDescription = map[string]Role{
	"ADMIN":     RoleAdmin,
	"SALES":     RoleSales,
	"WAREHOUSE": RoleWarehouse,
	"GUDANG":    RoleWarehouse,
}

// Parse resolves a directory description to a Role. ok is false for any value
// not present in the mapping table.
func Parse(description string) (Role, bool) {
	r, ok := byDescription[description]
	return r, ok
}

func (r Role) String() string { return string(r) }
