package reformat

import (
	"sort"
	"strings"
)

// checkNamespace warns about variables that do not carry the role name as prefix.
func (d *document) checkNamespace() {
	if d.settings.AnsibleRoleOwner == "" || d.settings.AnsibleRoleName == "" {
		return
	}
	ns := d.settings.AnsibleRoleName

	names := make([]string, 0, len(d.varNames))
	for name := range d.varNames {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.HasPrefix(name, ns+"_") {
			continue
		}
		d.log.WithField("variable", name).Warnf(
			"The variable '%s' is outside of the '%s' namespace."+
				" All variables of a Ansible role should really be in the namespace of the Ansible role!"+
				" Consider prefixing the variable with '%s_'"+
				" or consider to follow the DebOps prefix convention with '%s__'"+
				" which also works nicely with role dependencies.",
			name, ns, ns, ns)
	}
}
