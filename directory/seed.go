/*
seed.go - Sample directory data for demos

The seed set mirrors the contacts the municipal office keeps on file:
round-the-clock plumbers, the RMC response desk, maintenance crews.
*/
package directory

import (
	"fmt"

	"github.com/civista/water-office/ident"
)

var sampleContacts = []Contact{
	{
		Name:            "Raj's Plumbing Services",
		Type:            TypePlumber,
		Phone:           "+919876543210",
		Email:           "raj.plumber@rmc.gov.in",
		Location:        "Ward 5, Market Street",
		Availability:    "24/7",
		Category:        CategoryEmergency,
		ExperienceYears: 15,
		Rating:          4.8,
		Verified:        true,
	},
	{
		Name:            "Sharma Emergency Plumber",
		Type:            TypePlumber,
		Phone:           "+919765432109",
		Email:           "sharma.plumber@rmc.gov.in",
		Location:        "Ward 10, Main Road",
		Availability:    "24/7",
		Category:        CategoryEmergency,
		ExperienceYears: 12,
		Rating:          4.6,
		Verified:        true,
	},
	{
		Name:            "Expert Plumbing Hub",
		Type:            TypePlumber,
		Phone:           "+919654321098",
		Email:           "expert.plumbing@rmc.gov.in",
		Location:        "Ward 15, Industrial Area",
		Availability:    "9 AM - 6 PM",
		Category:        CategoryMaintenance,
		ExperienceYears: 10,
		Rating:          4.5,
		Verified:        true,
	},
	{
		Name:            "RMC Emergency Response",
		Type:            TypeRMCOffice,
		Phone:           "+917554436611",
		Email:           "emergency@rmc.raipur.gov.in",
		Location:        "RMC Headquarters, Raipur",
		Availability:    "24/7",
		Category:        CategoryEmergency,
		ExperienceYears: 0,
		Rating:          4.9,
		Verified:        true,
	},
	{
		Name:            "Municipal Maintenance Division",
		Type:            TypeCivilEngineer,
		Phone:           "+917554436612",
		Email:           "maintenance@rmc.raipur.gov.in",
		Location:        "RMC Technical Wing",
		Availability:    "Office hours",
		Category:        CategoryMaintenance,
		ExperienceYears: 0,
		Rating:          4.7,
		Verified:        true,
	},
	{
		Name:            "Quick Fix Electrician",
		Type:            TypeElectrician,
		Phone:           "+919543210987",
		Email:           "quickfix.electric@rmc.gov.in",
		Location:        "Ward 20, Commercial Zone",
		Availability:    "24/7",
		Category:        CategoryEmergency,
		ExperienceYears: 8,
		Rating:          4.4,
		Verified:        true,
	},
}

// SeedSampleContacts inserts the demo directory. Seeded contacts keep their
// ratings and verified flags, unlike Add which zeroes them.
func (s *Store) SeedSampleContacts() error {
	for _, c := range sampleContacts {
		c.ID = ident.New("CONT")
		_, err := s.db.Exec(`
			INSERT INTO contacts (id, name, contact_type, phone, email, location, availability, service_category, experience_years, rating, verified)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, string(c.Type), c.Phone, c.Email, c.Location, c.Availability,
			string(c.Category), c.ExperienceYears, c.Rating, boolToInt(c.Verified),
		)
		if err != nil {
			return fmt.Errorf("failed to seed contact %q: %w", c.Name, err)
		}
	}
	return nil
}
