package workflow

// StepCompleted is the server-evaluated completion predicate for a single
// step. Step 1 is complete once a worldview has been saved; steps 2-9 are
// complete when they carry any saved data.
func StepCompleted(view SessionView, step int) bool {
	data := view.StepData[step]
	if step == 1 {
		if view.Worldview != "" && IsKnownWorldview(view.Worldview) {
			return true
		}
		wid, _ := data["worldview_id"].(string)
		return IsKnownWorldview(Worldview(wid))
	}
	return len(data) > 0
}

// CompletedSteps returns the ascending list of completed step numbers.
func CompletedSteps(view SessionView) []int {
	var completed []int
	for s := MinStep; s <= MaxStep; s++ {
		if StepCompleted(view, s) {
			completed = append(completed, s)
		}
	}
	return completed
}
