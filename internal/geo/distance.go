package geo

import "math"

// earthRadiusKm is the mean sphere radius used by the haversine formula.
const earthRadiusKm = 6371

// DistanceKm returns the great-circle distance in kilometers between two
// coordinates using the haversine formula.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Between computes the distance between two optional coordinate pairs. The
// second return is false when either side lacks coordinates; callers use that
// to deprioritize, never to error.
func Between(lat1, lng1, lat2, lng2 *float64) (float64, bool) {
	if lat1 == nil || lng1 == nil || lat2 == nil || lng2 == nil {
		return 0, false
	}
	return DistanceKm(*lat1, *lng1, *lat2, *lng2), true
}

// RoundKm rounds a distance to 3 decimal places for presentation.
func RoundKm(d float64) float64 {
	return math.Round(d*1000) / 1000
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
