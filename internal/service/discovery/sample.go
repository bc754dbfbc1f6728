package discovery

import "github.com/dayoung-oh/lunchspin/internal/domain"

// DefaultCenter is the built-in demo location (Seocho-gu, Seoul). The
// sample dataset below only substitutes for live data near this point.
var DefaultCenter = domain.Location{
	Lat:     37.4841,
	Lon:     127.0162,
	Address: "서울 서초구 효령로 256 세원빌딩",
}

var sampleCandidates = []domain.Candidate{
	{ID: "1", Name: "맛있는 김치찌개", Category: "Korean", Lat: 37.4845, Lon: 127.0165, DistanceMeters: 100, WalkMinutes: 2, Rating: 4.2},
	{ID: "2", Name: "서초 돈까스", Category: "Japanese", Lat: 37.4838, Lon: 127.0158, DistanceMeters: 150, WalkMinutes: 3, Rating: 4.0},
	{ID: "3", Name: "효령 파스타", Category: "Italian", Lat: 37.4850, Lon: 127.0170, DistanceMeters: 300, WalkMinutes: 5, Rating: 4.4},
	{ID: "4", Name: "남부터미널 국밥", Category: "Korean", Lat: 37.4830, Lon: 127.0150, DistanceMeters: 400, WalkMinutes: 7, Rating: 4.1},
	{ID: "5", Name: "스시 마이", Category: "Japanese", Lat: 37.4855, Lon: 127.0180, DistanceMeters: 500, WalkMinutes: 8, Rating: 4.6},
	{ID: "6", Name: "버거 킹덤", Category: "Western", Lat: 37.4825, Lon: 127.0145, DistanceMeters: 600, WalkMinutes: 10, Rating: 3.7},
	{ID: "7", Name: "매운 떡볶이", Category: "Snack", Lat: 37.4860, Lon: 127.0190, DistanceMeters: 700, WalkMinutes: 12, Rating: 3.9},
	{ID: "8", Name: "건강 샐러드", Category: "Western", Lat: 37.4820, Lon: 127.0140, DistanceMeters: 800, WalkMinutes: 14, Rating: 4.0},
}

// sampleWithinRadius filters the sample dataset to the walking budget
// implied by radiusMeters.
func sampleWithinRadius(radiusMeters int) []domain.Candidate {
	maxMinutes := radiusMeters / int(domain.WalkingSpeedMetersPerMinute)
	out := make([]domain.Candidate, 0, len(sampleCandidates))
	for _, c := range sampleCandidates {
		if c.WalkMinutes <= maxMinutes {
			out = append(out, c)
		}
	}
	return out
}
