package exercises

type Status string

const (
	StatusMissing    Status = "missing"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ClassifyStatus compares today's practice time with the exercise estimate.
// Without an estimate or without practice today the exercise is missing.
func ClassifyStatus(estimatedSeconds, todaySeconds int64) Status {
	switch {
	case estimatedSeconds <= 0 || todaySeconds <= 0:
		return StatusMissing
	case todaySeconds < estimatedSeconds:
		return StatusInProgress
	default:
		return StatusCompleted
	}
}

type StatusView struct {
	ExerciseID           string `json:"exerciseId"`
	Name                 string `json:"name"`
	EstimatedTimeSeconds int64  `json:"estimatedTimeSeconds"`
	TodaySeconds         int64  `json:"todaySeconds"`
	Status               Status `json:"status"`
}

func StatusViews(list []Exercise, today map[string]int64) []StatusView {
	views := make([]StatusView, 0, len(list))
	for _, ex := range list {
		views = append(views, StatusView{
			ExerciseID:           ex.ID,
			Name:                 ex.Name,
			EstimatedTimeSeconds: ex.EstimatedTimeSeconds,
			TodaySeconds:         today[ex.ID],
			Status:               ClassifyStatus(ex.EstimatedTimeSeconds, today[ex.ID]),
		})
	}
	return views
}
