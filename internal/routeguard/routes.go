package routeguard

import domainauth "github.com/deskware/portal-client/internal/domain/auth"

// Route is a navigable destination and the authority it demands. An empty
// RequiredRole means any authenticated user may enter; Public routes need no
// session at all.
type Route struct {
	Path         string
	Name         string
	RequiredRole string
	Public       bool
}

// The portal route table. Department panels are interchangeable read-only
// surfaces; only the required authority differs.
var (
	RouteLogin     = Route{Path: "/login", Name: "Sign In", Public: true}
	RouteRegister  = Route{Path: "/register", Name: "Create Account", Public: true}
	RouteDashboard = Route{Path: "/dashboard", Name: "Dashboard"}
	RouteAdmin     = Route{Path: "/admin", Name: "Admin Panel", RequiredRole: domainauth.RoleAdmin}
	RouteHR        = Route{Path: "/hr", Name: "HR Panel", RequiredRole: domainauth.RoleHR}
	RoutePayroll   = Route{Path: "/payroll", Name: "Payroll Panel", RequiredRole: domainauth.RolePayroll}
	RouteFinance   = Route{Path: "/finance", Name: "Finance Panel", RequiredRole: domainauth.RoleFinance}
	RouteSales     = Route{Path: "/sales", Name: "Sales Panel", RequiredRole: domainauth.RoleSales}
	RouteIT        = Route{Path: "/it", Name: "IT Panel", RequiredRole: domainauth.RoleIT}
)

// Routes lists every destination in navigation order.
var Routes = []Route{
	RouteLogin,
	RouteRegister,
	RouteDashboard,
	RouteAdmin,
	RouteHR,
	RoutePayroll,
	RouteFinance,
	RouteSales,
	RouteIT,
}

// Lookup resolves a path to its route. Unknown paths fall back to the
// dashboard, matching the portal's catch-all redirect.
func Lookup(path string) Route {
	for _, r := range Routes {
		if r.Path == path {
			return r
		}
	}
	return RouteDashboard
}
