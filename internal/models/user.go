package models

// User is the worker profile returned by the login endpoint.
type User struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Address        string `json:"address,omitempty"`
	Gender         string `json:"gender,omitempty"`
	NIC            string `json:"nic,omitempty"`
	DOB            string `json:"dob,omitempty"`
	RegisteredDate string `json:"registeredDate,omitempty"`
	Image          string `json:"image,omitempty"`
	Contact        string `json:"contact,omitempty"`
	UserRole       string `json:"userRole,omitempty"`
	Designation    string `json:"designation,omitempty"`
}

// Session is the authenticated state held for the lifetime of the process.
// Authenticated implies a non-empty token.
type Session struct {
	Token string
	User  *User
}

// Authenticated reports whether the session carries a usable credential.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
