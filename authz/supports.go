package authz

import "strings"

const AllActions = "*"

type (
	permission struct {
		name    string
		actions string
	}
)

var _ Permission = (*permission)(nil)

func NewPermission(name string, actions string) Permission {
	return permission{name: name, actions: actions}
}

func (p permission) Name() string {
	return p.name
}

func (p permission) Actions() string {
	return p.actions
}

func (p permission) String() string {
	return p.name + "(" + p.actions + ")"
}

// Implies requires equal names and that every requested action is granted
func (p permission) Implies(other Permission) bool {
	if other == nil || p.name != other.Name() {
		return false
	}

	granted := splitActions(p.actions)
	if _, ok := granted[AllActions]; ok {
		return true
	}

	for action := range splitActions(other.Actions()) {
		if _, ok := granted[action]; !ok {
			return false
		}
	}

	return true
}

func splitActions(actions string) map[string]struct{} {
	result := make(map[string]struct{})
	for _, action := range strings.Split(actions, ",") {
		action = strings.TrimSpace(action)
		if len(action) != 0 {
			result[action] = struct{}{}
		}
	}
	return result
}
