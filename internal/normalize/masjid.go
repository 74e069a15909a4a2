package normalize

import (
	"strings"

	"shaheen-admin/internal/model"
)

var (
	idHeaders      = []string{"Document ID", "documentid", "documentId"}
	nameHeaders    = []string{"Name", "name"}
	clusterHeaders = []string{"Cluster Number", "clusternumber", "clusterNumber"}
)

// MasjidRow maps a spreadsheet row keyed by header to a Masjid.
// ok is false when the id, name or cluster is missing.
func MasjidRow(row map[string]string) (model.Masjid, bool) {
	m := model.Masjid{
		ID:            firstCell(row, idHeaders),
		Name:          firstCell(row, nameHeaders),
		ClusterNumber: firstCell(row, clusterHeaders),
	}
	return m, m.ID != "" && m.Name != "" && m.ClusterNumber != ""
}

func firstCell(row map[string]string, headers []string) string {
	for _, h := range headers {
		if v := strings.TrimSpace(row[h]); v != "" {
			return v
		}
	}
	return ""
}
