package states

type State string

const (
	StateNone State = "none"
)

// account linking states
const (
	AwaitingHash State = "link_awaiting_hash"
	Validating   State = "link_validating"
	Linked       State = "linked"
)
