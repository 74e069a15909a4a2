package service

import (
	"context"
	"log"

	"shaheen-admin/internal/normalize"
)

type ImportSummary struct {
	Imported int
	Skipped  int
	Failed   int
}

type MasjidService struct {
	masjids MasjidStore
}

func NewMasjidService(masjids MasjidStore) *MasjidService {
	return &MasjidService{masjids: masjids}
}

// Import upserts one masjid per complete row. Incomplete rows are skipped.
func (s *MasjidService) Import(ctx context.Context, rows []map[string]string) *ImportSummary {
	sum := &ImportSummary{}
	for i, row := range rows {
		m, ok := normalize.MasjidRow(row)
		if !ok {
			log.Printf("WARN skip row %d: missing id, name or cluster", i+2)
			sum.Skipped++
			continue
		}
		if err := s.masjids.Upsert(ctx, m); err != nil {
			log.Printf("ERROR import masjid %s: %v", m.ID, err)
			sum.Failed++
			continue
		}
		sum.Imported++
	}
	return sum
}
