package domain

// User is a registered marketplace member. Name and Birthdate together act as
// the login credential; neither is unique on its own.
type User struct {
	ID        string `json:"id" bson:"id"`
	Name      string `json:"name" bson:"name"`
	Birthdate string `json:"birthdate" bson:"birthdate"`
}

// MatchesCredentials reports whether name and birthdate both equal the stored
// values exactly (case-sensitive, no normalisation).
func (u User) MatchesCredentials(name, birthdate string) bool {
	return u.Name == name && u.Birthdate == birthdate
}
