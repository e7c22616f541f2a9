package domain

// Address is the postal address shared by donors and recipients.
type Address struct {
	StreetAndNumber string `json:"street_and_number"`
	City            string `json:"city"`
	State           string `json:"state"`
	ZipCode         string `json:"zip_code"`
	Country         string `json:"country"`
}

// Ratings is the running average over every rated donation of a donor.
type Ratings struct {
	Stars        float64 `json:"stars"`
	TotalRatings int     `json:"total_ratings"`
}

// Donor is the root document of a food donor.
type Donor struct {
	DonorID            string         `json:"donor_id"`
	FirstName          string         `json:"first_name"`
	LastName           string         `json:"last_name"`
	Email              string         `json:"email"`
	PhoneNumber        string         `json:"phone_number"`
	TaxID              string         `json:"tax_id"`
	CompanyAssociation string         `json:"company_association"`
	Address            Address        `json:"address"`
	Donations          []ImpactRecord `json:"donations"`
	Ratings            Ratings        `json:"ratings"`
	ImpactLog          Rollup         `json:"impact_log"`

	Version int64 `json:"-"`
}

// FullName joins first and last name.
func (d *Donor) FullName() string {
	return joinName(d.FirstName, d.LastName)
}

// Donation returns the embedded record for the donation, or nil.
func (d *Donor) Donation(donationID string) *ImpactRecord {
	return findRecord(d.Donations, donationID)
}

// DonorPatch carries the optional fields of a donor profile update.
type DonorPatch struct {
	PhoneNumber        *string  `json:"phone_number"`
	Address            *Address `json:"address"`
	CompanyAssociation *string  `json:"company_association"`
}
