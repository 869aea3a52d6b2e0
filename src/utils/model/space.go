package model

// Serialized account sizes, used for storage deposit calculation.
// Layout: 8 byte discriminator, fixed fields, strings and vectors prefixed with a 4 byte length.
const (
	discriminatorSize = 8
	identitySize      = 32
	lengthPrefixSize  = 4

	CampaignSpace = discriminatorSize +
		identitySize + // authority
		8 + // target_amount
		8 + // current_amount
		8 + // deadline
		8 + // created_at
		1 + // status
		1 + // category
		lengthPrefixSize + MaxTitleLength +
		lengthPrefixSize + MaxDescriptionLength +
		lengthPrefixSize + MaxLocationLength +
		lengthPrefixSize + MaxMetrics*(lengthPrefixSize+MaxMetricLength) +
		lengthPrefixSize + MaxMediaUris*(lengthPrefixSize+MaxMediaUriLength)

	DonationReceiptSpace = discriminatorSize +
		identitySize + // donor
		identitySize + // campaign
		8 + // amount
		8 // timestamp
)
