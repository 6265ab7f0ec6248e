package task

type CreateTaskRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=255"`
	Responsible string   `json:"responsible" binding:"max=255"`
	TargetTime  float64  `json:"targetTime" binding:"gte=0"`
	TimeUnit    float64  `json:"timeUnit" binding:"omitempty,gt=0"`
	DocumentIDs []uint64 `json:"documentIds"`
}

// TaskPatch enumerates the mutable task fields. DocumentIDs is always the
// complete desired document set; an absent list unlinks every document.
type TaskPatch struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=255"`
	Responsible *string  `json:"responsible" binding:"omitempty,max=255"`
	Completed   *bool    `json:"completed"`
	TargetTime  *float64 `json:"targetTime" binding:"omitempty,gte=0"`
	TimeUnit    *float64 `json:"timeUnit" binding:"omitempty,gt=0"`
	Position    *int     `json:"position" binding:"omitempty,gte=0"`
	DocumentIDs []uint64 `json:"documentIds"`
}

type MoveRequest struct {
	Position *int `json:"position" binding:"required,gte=0"`
}
