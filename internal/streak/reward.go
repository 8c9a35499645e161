package streak

// DailyReward is the payout for a single streak day: $1 for days 1-2,
// $2 for days 3-4, $3 for days 5-6, and so on (ceil(day/2)).
func DailyReward(day int) int {
	return (day + 1) / 2
}

// TotalReward is the cumulative payout for a streak of the given length,
// recomputed from scratch. A reset streak calls this with length 1, so no
// incremental bookkeeping is assumed.
func TotalReward(streak int) int {
	total := 0
	for day := 1; day <= streak; day++ {
		total += DailyReward(day)
	}
	return total
}
