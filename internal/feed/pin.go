package feed

// PinPlan lists the writes that leave exactly one post pinned.
type PinPlan struct {
	Pin   uint
	Unpin []uint
}

// Empty reports whether the target is already the only pinned post.
func (p PinPlan) Empty() bool {
	return p.Pin == 0 && len(p.Unpin) == 0
}

// PlanPin decides which posts must be unpinned so that target ends up as the
// only pinned post. Pin is zero when target is already pinned.
func PlanPin(posts []Post, target uint) PinPlan {
	plan := PinPlan{Pin: target}
	for _, p := range posts {
		if !p.IsPinned {
			continue
		}
		if p.ID == target {
			plan.Pin = 0
			continue
		}
		plan.Unpin = append(plan.Unpin, p.ID)
	}
	return plan
}
