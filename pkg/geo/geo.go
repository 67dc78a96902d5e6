package geo

import "math"

const EarthRadiusKm = 6371.0

type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// DistanceKm is the haversine great-circle distance rounded to 0.1 km.
func DistanceKm(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(EarthRadiusKm*c*10) / 10
}

func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
