package admin

type Permission struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog lists the capabilities the dashboard knows how to name.
var Catalog = []Permission{
	{ID: "content.create", Name: "Create content"},
	{ID: "content.edit", Name: "Edit content"},
	{ID: "content.delete", Name: "Delete content"},
	{ID: "events.manage", Name: "Manage events"},
	{ID: "shop.manage", Name: "Manage shop"},
	{ID: "community.moderate", Name: "Moderate community"},
	{ID: "team.manage", Name: "Manage team"},
	{ID: "settings.edit", Name: "Edit app settings"},
}

// PermissionsFor expands ids into named permissions, keeping unknown ids as opaque entries.
func PermissionsFor(ids []string) []Permission {
	out := make([]Permission, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		p := Permission{ID: id, Name: id}
		for _, known := range Catalog {
			if known.ID == id {
				p = known
				break
			}
		}
		out = append(out, p)
	}
	return out
}

func allPermissions() []Permission {
	return append([]Permission(nil), Catalog...)
}
