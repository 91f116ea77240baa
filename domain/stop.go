package domain

// Stop is one location of a raid train.
// Time is the caller's label ("18:30"), it is never parsed here.
type Stop struct {
	Time     string
	Location string
	BossName string
}
