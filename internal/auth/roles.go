package auth

// Role is the principal's access level, as issued by the marketplace auth
// service.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superAdmin"
	RoleAnonymous  Role = "anonymous"
)

// Action is a chat capability checked once per operation.
type Action string

const (
	ActionConnect Action = "connect"
	ActionChat    Action = "chat"
)

// rolePermissions maps role to permitted actions. Anonymous principals hold
// no chat capabilities at all.
var rolePermissions = map[Role]map[Action]bool{
	RoleUser:       {ActionConnect: true, ActionChat: true},
	RoleAdmin:      {ActionConnect: true, ActionChat: true},
	RoleSuperAdmin: {ActionConnect: true, ActionChat: true},
	RoleAnonymous:  {},
}

// ParseRole maps a raw claim value onto a known role. Unknown values come
// back as anonymous so they fall through every permission check.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return Role(raw)
	default:
		return RoleAnonymous
	}
}

// Can reports whether the role holds the given capability.
func (r Role) Can(action Action) bool {
	return rolePermissions[r][action]
}
