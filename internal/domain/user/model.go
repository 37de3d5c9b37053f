package user

// User is the minimal account view needed to gate follows.
type User struct {
	ID          string
	DisplayName string
	Active      bool
}
