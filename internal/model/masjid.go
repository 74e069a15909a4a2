package model

const (
	MasjidCollection = "Masjid"
	WinnerCollection = "winners"

	// VolunteerWinnerCollection lists winners by type; volunteer entries carry the Users id.
	VolunteerWinnerCollection = "winners_volunteers"
)

type Masjid struct {
	ID            string `bson:"_id" json:"id"`
	Name          string `bson:"name" json:"name"`
	ClusterNumber string `bson:"clusterNumber" json:"cluster_number"`
}

// Winner is a prize winner entry; ID is the student id.
type Winner struct {
	ID             string `bson:"id" json:"id"`
	Name           string `bson:"name" json:"name"`
	GuardianName   string `bson:"guardianName,omitempty" json:"guardian_name"`
	GuardianNumber string `bson:"guardianNumber,omitempty" json:"guardian_number"`
	MasjidName     string `bson:"masjidName,omitempty" json:"masjid_name"`
	ClusterNumber  any    `bson:"clusterNumber,omitempty" json:"cluster_number"`
	Prize          any    `bson:"prize,omitempty" json:"prize"`
}
