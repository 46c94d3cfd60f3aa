package contextkeys

type contextKey string

const (
	UserIDKey        contextKey = "UserID"
	UserPrivilegeKey contextKey = "UserPrivilege"
)
