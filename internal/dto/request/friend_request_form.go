package request

// FriendRequestForm 发送好友申请弹窗表单
// 使用位置:
//   - handler/social_handler.go: SubmitFriendRequest
//   - service/social: Widget.Submit
type FriendRequestForm struct {
	// Email 被申请人的邮箱，必填且不超过 255 个 UTF-16 码元（与浏览器 string.length 一致）
	Email string `json:"email" validate:"required,utf16max=255"`
}
