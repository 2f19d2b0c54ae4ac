package entity

// User is an authenticated CRM operator. Passwords live only in the
// admin_users table; the struct never carries the hash past the
// repository boundary.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
