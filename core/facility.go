package core

type FacilityKind string

const (
	FacilityRecycling  FacilityKind = "recycling"
	FacilityEWaste     FacilityKind = "e-waste"
	FacilityComposting FacilityKind = "composting"
)

// Facility is a place that accepts recyclable or compostable material.
type Facility struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Kind        FacilityKind `json:"type"`
	Address     string       `json:"address"`
	Phone       string       `json:"phone"`
	Hours       string       `json:"hours"`
	Description string       `json:"description"`
	Lat         float64      `json:"lat"`
	Lng         float64      `json:"lng"`
}

// DefaultFacilities is the built-in Bengaluru directory.
func DefaultFacilities() []Facility {
	return []Facility{
		{ID: "1", Name: "Saahas Zero Waste", Kind: FacilityRecycling, Address: "JP Nagar, Bengaluru", Phone: "080-2222-1199", Hours: "Mon-Sat: 9:00 AM - 6:00 PM", Description: "Accepts paper, plastic, metal, e-waste, and household hazardous waste", Lat: 12.9082, Lng: 77.5929},
		{ID: "2", Name: "E-Parisaraa", Kind: FacilityEWaste, Address: "Electronic City, Bengaluru", Phone: "080-2852-1533", Hours: "Mon-Fri: 10:00 AM - 5:00 PM", Description: "Specializes in electronic waste recycling and refurbishment", Lat: 12.8456, Lng: 77.6603},
		{ID: "3", Name: "Hasiru Dala", Kind: FacilityRecycling, Address: "Jayanagar, Bengaluru", Phone: "080-2663-7911", Hours: "Daily: 8:00 AM - 8:00 PM", Description: "Community recycling center with waste picker integration", Lat: 12.9294, Lng: 77.5831},
		{ID: "4", Name: "Terra Firma Bio Technologies", Kind: FacilityComposting, Address: "Whitefield, Bengaluru", Phone: "080-4545-6789", Hours: "Mon-Sat: 8:00 AM - 5:00 PM", Description: "Organic waste composting and biogas generation facility", Lat: 12.9698, Lng: 77.7500},
		{ID: "5", Name: "BBMP Dry Waste Collection Center", Kind: FacilityRecycling, Address: "Koramangala, Bengaluru", Phone: "080-2553-1188", Hours: "Daily: 7:00 AM - 7:00 PM", Description: "Official municipal dry waste collection and segregation center", Lat: 12.9279, Lng: 77.6271},
		{ID: "6", Name: "Karo Sambhav", Kind: FacilityEWaste, Address: "Indiranagar, Bengaluru", Phone: "1800-102-4649", Hours: "Mon-Fri: 9:00 AM - 6:00 PM", Description: "Producer Responsibility Organization for e-waste management", Lat: 12.9784, Lng: 77.6408},
	}
}
