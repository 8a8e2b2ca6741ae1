package user

import "strings"

// Company is the organisation a user belongs to. The console shows its name as
// the user's department.
type Company struct {
	Name string `json:"name"`
}

// User represents a user record as exchanged with the users API.
type User struct {
	ID      int64   `json:"id"`      // ID is the unique identifier for the user
	Name    string  `json:"name"`    // Name is the full name, "First Last"
	Email   string  `json:"email"`   // Email is the email address of the user
	Company Company `json:"company"` // Company holds the department name
}

// Input is the create/update payload for a user. It carries no ID: the server
// assigns one on create and the URL carries it on update.
type Input struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company Company `json:"company"`
}

// Input returns the mutable fields of u.
func (u User) Input() Input {
	return Input{Name: u.Name, Email: u.Email, Company: u.Company}
}

// FirstName is the part of Name before the first space.
func (u User) FirstName() string {
	first, _ := SplitName(u.Name)
	return first
}

// LastName is everything after the first space of Name.
func (u User) LastName() string {
	_, last := SplitName(u.Name)
	return last
}

// Department returns the company name.
func (u User) Department() string {
	return u.Company.Name
}

// SplitName splits a full name on its first space.
// "Jane Mary Doe" yields ("Jane", "Mary Doe"); "Cher" yields ("Cher", "").
func SplitName(name string) (first, last string) {
	first, last, _ = strings.Cut(name, " ")
	return first, last
}

// MaxID returns the largest ID in users, or 0 when users is empty.
func MaxID(users []User) int64 {
	var maxID int64
	for _, u := range users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	return maxID
}
