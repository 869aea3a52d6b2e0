package address

var (
	CampaignTag = []byte("campaign")
	DonationTag = []byte("donation")
)

func CampaignSeeds(authority Identity) [][]byte {
	return [][]byte{CampaignTag, authority.Bytes()}
}

func DonationSeeds(campaign, donor Identity) [][]byte {
	return [][]byte{DonationTag, campaign.Bytes(), donor.Bytes()}
}

// Campaign returns the campaign address owned by the authority.
// One authority can have at most one live campaign.
func Campaign(programId, authority Identity) (Identity, uint8, error) {
	return FindProgramAddress(CampaignSeeds(authority), programId)
}

// Donation returns the receipt address of donor's contribution to the campaign
func Donation(programId, campaign, donor Identity) (Identity, uint8, error) {
	return FindProgramAddress(DonationSeeds(campaign, donor), programId)
}

// Verify recomputes the address with a known bump and compares it with the expected one
func Verify(expected Identity, seeds [][]byte, bump uint8, programId Identity) bool {
	withBump := append(append([][]byte{}, seeds...), []byte{bump})
	derived, err := CreateProgramAddress(withBump, programId)
	if err != nil {
		return false
	}
	return derived == expected
}
