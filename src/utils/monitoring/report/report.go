package report

type Report struct {
	Run    *RunReport    `json:"run,omitempty"`
	Escrow *EscrowReport `json:"escrow,omitempty"`
	Server *ServerReport `json:"server,omitempty"`
}
