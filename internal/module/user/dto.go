package user

// UpdateProfileRequest represents the input for updating the caller's profile.
type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Avatar string `json:"avatar" binding:"omitempty,max=512"`
}
