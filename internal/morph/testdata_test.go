package morph

// testMapping returns a small two-gender table: pregnant is banned for male,
// bodybuilderSize is narrower for female.
func testMapping() *Mapping {
	return &Mapping{
		Male: &GenderTable{
			Body: map[string]Range{
				"bodyFat":         {Min: -1, Max: 2},
				"bodybuilderSize": {Min: 0, Max: 1},
				"pregnant":        {Min: 0, Max: 0},
				"shoulderWidth":   {Min: -1, Max: 1},
			},
			Face: map[string]Range{
				"jawWidth":   {Min: -1, Max: 1},
				"noseLength": {Min: -0.5, Max: 0.5},
			},
			LimbMass: map[string]Range{
				"armMass": {Min: 0.7, Max: 1.5},
			},
		},
		Female: &GenderTable{
			Body: map[string]Range{
				"bodyFat":         {Min: -1, Max: 2},
				"bodybuilderSize": {Min: 0, Max: 0.6},
				"pregnant":        {Min: 0, Max: 1},
				"shoulderWidth":   {Min: -1, Max: 0.5},
			},
			Face: map[string]Range{
				"jawWidth":   {Min: -1, Max: 0.5},
				"noseLength": {Min: -0.5, Max: 0.5},
			},
			LimbMass: map[string]Range{
				"armMass": {Min: 0.7, Max: 1.3},
			},
		},
	}
}
