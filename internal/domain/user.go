package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User — покупатель или администратор магазина.
type User struct {
	ID   string
	Name string
	Role Role
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
