package model

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	UUIDBase
	Email     string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	FirstName string   `gorm:"size:100;not null" json:"first_name"`
	LastName  string   `gorm:"size:100;not null" json:"last_name"`
	Phone     string   `gorm:"size:30" json:"phone,omitempty"`
	Password  string   `gorm:"size:100;not null" json:"-"`
	Role      UserRole `gorm:"size:20;default:'student'" json:"role"`
	IsActive  bool     `gorm:"default:true" json:"is_active"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
