package types

// EnrichedRecord is a record that passed the unit filter. Record carries the
// "id" and "don_vi_name" fields; the other members are cached for rendering.
type EnrichedRecord struct {
	Record   Record
	ID       string
	Name     string
	Unit     string
	UnitName string
}

type Projection struct {
	ID       string `json:"id"`
	Name     string `json:"ho_chu_dem_ten"`
	Unit     string `json:"don_vi"`
	UnitName string `json:"don_vi_name"`
}

type UnitStat struct {
	Code  string
	Name  string
	Count int
}
