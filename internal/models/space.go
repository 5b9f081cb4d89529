package models

// Space is the minified form of a Record. Field order here is the key order
// of the encoded output.
type Space struct {
	SpaceID   Field `json:"spaceid"`
	LatLng    Field `json:"latlng"`
	RateRange Field `json:"raterange"`
	TimeLimit Field `json:"timelimit"`
}

// NewSpace projects a record onto the four retained fields.
func NewSpace(r Record) Space {
	return Space{
		SpaceID:   r.Field("spaceid"),
		LatLng:    r.Field("latlng"),
		RateRange: r.Field("raterange"),
		TimeLimit: r.Field("timelimit"),
	}
}

// LocatedSpace is a Space whose location has been resolved to coordinates.
type LocatedSpace struct {
	ID          string
	Coordinates Coordinates
	RateRange   *string
	TimeLimit   *string
	Price       *float64
}
