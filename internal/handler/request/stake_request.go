package request

// StartStakeRequest 发起质押
type StartStakeRequest struct {
	UserID    uint64 `json:"user_id" binding:"required"`
	PackageID uint64 `json:"package_id" binding:"required"`
}

// ConfirmStakeRequest 确认在途质押
type ConfirmStakeRequest struct {
	UserID uint64 `json:"user_id" binding:"required"`
}

// CancelStakeRequest 丢弃在途质押
type CancelStakeRequest struct {
	UserID uint64 `json:"user_id" binding:"required"`
}
