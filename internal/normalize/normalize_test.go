package normalize

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVolunteer(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		exp  map[string]string
		hafz bool
	}{
		{
			name: "masjid details array with one entry",
			data: map[string]any{
				"name":          "Imran",
				"masjidDetails": []any{map[string]any{"masjidName": "Noor", "clusterNumber": float64(4)}},
			},
			exp: map[string]string{"name": "Imran", "masjid": "Noor", "cluster": "4", "role": DefaultRole},
		},
		{
			name: "masjid details array with several",
			data: map[string]any{
				"displayName": "Zaid",
				"masjidDetails": []any{
					map[string]any{"masjidName": "Noor", "clusterNumber": int32(4)},
					map[string]any{"masjidName": "Bilal", "clusterNumber": int32(5)},
				},
			},
			exp: map[string]string{"name": "Zaid", "masjid": MultipleMasjids, "cluster": MultipleClusters},
		},
		{
			name: "same cluster counts once",
			data: map[string]any{
				"masjidDetails": []any{
					map[string]any{"masjidName": "Noor", "clusterNumber": "4"},
					map[string]any{"masjidName": "Bilal", "clusterNumber": "4"},
				},
			},
			exp: map[string]string{"name": UnknownName, "masjid": MultipleMasjids, "cluster": "4"},
		},
		{
			name: "masjid details object",
			data: map[string]any{
				"masjidDetails": map[string]any{"masjidName": "Makkah", "clusterNumber": "12"},
			},
			exp: map[string]string{"masjid": "Makkah", "cluster": "12"},
		},
		{
			name: "snake case masjid details",
			data: map[string]any{
				"masjid_details": []any{map[string]any{"name": "Yusuf", "masjidName": "Noor", "clusterNumber": int32(4)}},
			},
			exp: map[string]string{"name": "Yusuf", "masjid": "Noor", "cluster": "4"},
		},
		{
			name: "snake case masjid details object",
			data: map[string]any{
				"name":           "Imran",
				"masjid_details": map[string]any{"masjidName": "Bilal", "clusterNumber": "7"},
			},
			exp: map[string]string{"name": "Imran", "masjid": "Bilal", "cluster": "7"},
		},
		{
			name: "masjid names are not volunteer names",
			data: map[string]any{
				"managedMasjids": []any{map[string]any{"name": "Taiba Masjid", "masjidName": "Taiba"}},
			},
			exp: map[string]string{"name": UnknownName, "masjid": "Taiba"},
		},
		{
			name: "managed masjids then assigned",
			data: map[string]any{
				"masjidDetails":  []any{},
				"managedMasjids": []any{map[string]any{"masjidName": "Taiba"}},
				"assignedMasjid": map[string]any{"masjidName": "Other", "clusterNumber": int64(9)},
			},
			exp: map[string]string{"masjid": "Taiba", "cluster": "9"},
		},
		{
			name: "phone fallback and role",
			data: map[string]any{"phone_number": "98765", "role": "hafiz"},
			exp:  map[string]string{"phone": "98765", "role": "hafiz", "masjid": "", "cluster": ""},
			hafz: true,
		},
		{
			name: "hafiz in name",
			data: map[string]any{"name": "Hafiz Salman", "phoneNumber": "111"},
			exp:  map[string]string{"phone": "111"},
			hafz: true,
		},
		{
			name: "hafiz flag as string",
			data: map[string]any{"isHafiz": "true"},
			hafz: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Volunteer("u1", tt.data)
			assert.Equal(t, "u1", v.ID)
			got := map[string]string{
				"name": v.Name, "phone": v.Phone, "role": v.Role,
				"masjid": v.Masjid, "cluster": v.Cluster,
			}
			for k, want := range tt.exp {
				assert.Equal(t, want, got[k], k)
			}
			assert.Equal(t, tt.hafz, v.IsHafiz)
		})
	}
}

func TestMasjidRow(t *testing.T) {
	m, ok := MasjidRow(map[string]string{"Document ID": "m1", "Name": " Noor ", "Cluster Number": "3"})
	assert.True(t, ok)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "Noor", m.Name)
	assert.Equal(t, "3", m.ClusterNumber)

	m, ok = MasjidRow(map[string]string{"documentId": "m2", "name": "Bilal", "clusternumber": "7"})
	assert.True(t, ok)
	assert.Equal(t, "m2", m.ID)

	_, ok = MasjidRow(map[string]string{"Document ID": "m3", "Name": "Taiba"})
	assert.False(t, ok)
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, "Mohammed Ali Khan", TitleCase("  MOHAMMED ali   khan"))
	assert.Equal(t, "jose", Fold(" José "))
	assert.Equal(t, Fold("IMRAN"), Fold("imran"))

	assert.Equal(t, "Mohammed_Ali", SafeFileName("Mohammed Ali"))
	assert.Equal(t, "Masjid_e_Noor", SafeFileName("Masjid-e-Noor / "))
	assert.Equal(t, "unnamed", SafeFileName("***"))

	assert.Equal(t, "4", Text(float64(4)))
	assert.Equal(t, "4.5", Text(4.5))
	assert.Equal(t, "12", Text(int32(12)))
	assert.Equal(t, "", Text(nil))
}

func TestTitleCaseConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := fmt.Sprintf("MASJID e NOOR %d ali", i)
			want := fmt.Sprintf("Masjid E Noor %d Ali", i)
			for j := 0; j < 50; j++ {
				if got := TitleCase(in); got != want {
					errs <- got
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("unexpected title case %q", got)
	}
}
