package ports

const (
	DefaultOrdersLimit = 50  // page size when the client does not ask for one
	MaxOrdersLimit     = 200 // hard ceiling for a single listing request
	MaxInvestorNoteLen = 200
)
