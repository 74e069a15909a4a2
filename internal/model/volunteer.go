package model

const UserCollection = "Users"

// Volunteer is the canonical profile built from a Users document.
type Volunteer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Role    string `json:"role"`
	Masjid  string `json:"masjid"`
	Cluster string `json:"cluster"`
	IsHafiz bool   `json:"is_hafiz"`
}
