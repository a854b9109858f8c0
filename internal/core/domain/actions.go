package domain

// AssetAction is one of the transaction flows an account can take part
// in as a source.
type AssetAction int

const (
	ActionViewActivity AssetAction = iota
	ActionReceive
	ActionSend
	ActionSwap
	ActionSell
	ActionBuy
	ActionInterestDeposit
	ActionInterestWithdraw
	ActionFiatWithdraw
)

func (a AssetAction) String() string {
	switch a {
	case ActionViewActivity:
		return "view_activity"
	case ActionReceive:
		return "receive"
	case ActionSend:
		return "send"
	case ActionSwap:
		return "swap"
	case ActionSell:
		return "sell"
	case ActionBuy:
		return "buy"
	case ActionInterestDeposit:
		return "interest_deposit"
	case ActionInterestWithdraw:
		return "interest_withdraw"
	case ActionFiatWithdraw:
		return "fiat_withdraw"
	default:
		return "unknown"
	}
}

// ActionSet is the set of actions available on an account.
type ActionSet map[AssetAction]struct{}

// NewActionSet returns a set containing the given actions.
func NewActionSet(actions ...AssetAction) ActionSet {
	set := make(ActionSet, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// Contains returns whether the action belongs to the set.
func (s ActionSet) Contains(action AssetAction) bool {
	_, ok := s[action]
	return ok
}

// Intersect returns the actions present in both sets. Group-level
// actions are defined as the intersection of member action sets.
func (s ActionSet) Intersect(other ActionSet) ActionSet {
	res := make(ActionSet)
	for a := range s {
		if other.Contains(a) {
			res[a] = struct{}{}
		}
	}
	return res
}
