package core

// Action market operation name
type Action string

const (
	// ActionMint deposit underlying, receive shares
	ActionMint Action = "mint"
	// ActionRedeem burn shares, receive underlying
	ActionRedeem Action = "redeem"
	// ActionBorrow borrow underlying
	ActionBorrow Action = "borrow"
	// ActionRepayBorrow repay borrowed underlying
	ActionRepayBorrow Action = "repay_borrow"
	// ActionTransfer move shares
	ActionTransfer Action = "transfer"
	// ActionTransferFrom move shares on behalf of the owner
	ActionTransferFrom Action = "transfer_from"
	// ActionApprove set allowance
	ActionApprove Action = "approve"
	// ActionRefund return attached funds of a failed request
	ActionRefund Action = "refund"
)

var mutatingActions = map[Action]bool{
	ActionMint:         true,
	ActionRedeem:       true,
	ActionBorrow:       true,
	ActionRepayBorrow:  true,
	ActionTransfer:     true,
	ActionTransferFrom: true,
	ActionApprove:      true,
}

func (a Action) String() string {
	return string(a)
}

// Valid a request may carry this action
func (a Action) Valid() bool {
	return mutatingActions[a]
}

// AcceptsFunds underlying may be attached to the request,
// redeem classifies its attachment itself
func (a Action) AcceptsFunds() bool {
	return a == ActionMint || a == ActionRedeem || a == ActionRepayBorrow
}
