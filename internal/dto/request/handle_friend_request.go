package request

// HandleFriendRequest 接受/拒绝好友申请请求
// 使用位置:
//   - handler/social_handler.go: AcceptFriendRequest, RejectFriendRequest
type HandleFriendRequest struct {
	// SenderEmail 申请人邮箱，对应邀请卡片的 key
	SenderEmail string `json:"senderEmail"`
}
