package request

type Donate struct {
	Amount uint64 `json:"amount"`
}
