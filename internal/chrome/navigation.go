package chrome

import "github.com/openkpi/kpi-gateway/internal/backend"

type NavItem struct {
	Label    string    `json:"label"`
	Path     string    `json:"path,omitempty"`
	Children []NavItem `json:"children,omitempty"`
}

// Navigation is the sidebar model: the signed-in identity plus the menu
// entries the dashboard offers.
type Navigation struct {
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
	Items     []NavItem `json:"items"`
}

func BuildNavigation(user backend.User) Navigation {
	return Navigation{
		UserName:  user.Name + " " + user.Surname,
		UserEmail: user.Email,
		Items: []NavItem{
			{Label: "Dashboard", Path: "/dashboard"},
			{Label: "KPI", Children: []NavItem{
				{Label: "Create KPI", Path: "/createKPI"},
				{Label: "Update KPI", Path: "/updateKPI"},
			}},
			{Label: "Logout", Path: "/logout"},
		},
	}
}
