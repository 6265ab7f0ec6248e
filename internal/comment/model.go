package comment

type CreateCommentRequest struct {
	Duration    float64 `json:"duration" binding:"gte=0"`
	TimeUnit    float64 `json:"timeUnit" binding:"omitempty,gt=0"`
	Responsible *string `json:"responsible" binding:"omitempty,max=255"`
	Comment     string  `json:"comment" binding:"required,max=4000"`
}
