package domain

// NotAvailable fills geocoding fields the provider did not return.
const NotAvailable = "N/A"

// Place is the reverse-geocoded name of a coordinate.
type Place struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Weather is the current conditions at a coordinate.
type Weather struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// LocationReport combines place and weather. Weather is nil when the provider
// returned no usable conditions.
type LocationReport struct {
	Location Place    `json:"location"`
	Weather  *Weather `json:"weather"`
}
