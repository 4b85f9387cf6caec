package policy

import "strings"

// Vars are the values substituted into tag templates.
type Vars struct {
	Tenant string
	Group  string
	Method string
}

// ExpandTags substitutes {tenant}, {group} and {method} in each template.
// A template that references a placeholder whose value is empty is dropped,
// so a tenant-scoped tag never collapses into a tag shared by all tenants.
func ExpandTags(templates []string, v Vars) []string {
	if len(templates) == 0 {
		return nil
	}
	out := make([]string, 0, len(templates))
	for _, tpl := range templates {
		tag, ok := expand(tpl, v)
		if ok && tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func expand(tpl string, v Vars) (string, bool) {
	if !strings.Contains(tpl, "{") {
		return tpl, true
	}
	for _, p := range [...]struct{ key, val string }{
		{"{tenant}", v.Tenant},
		{"{group}", v.Group},
		{"{method}", v.Method},
	} {
		if !strings.Contains(tpl, p.key) {
			continue
		}
		if p.val == "" {
			return "", false
		}
		tpl = strings.ReplaceAll(tpl, p.key, p.val)
	}
	return tpl, true
}
