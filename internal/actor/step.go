package actor

// Replay folds a sequence of inputs through a reducer starting at state and
// returns the final state together with every effect produced, in order.
//
// It is the reducer-level harness used by tests; effects are not executed.
func Replay[S any](state S, reducer ReducerFunc[S], inputs ...Input) (S, []Effect) {
	var all []Effect
	for _, in := range inputs {
		var effects []Effect
		state, effects = reducer(state, in)
		all = append(all, effects...)
	}
	return state, all
}
