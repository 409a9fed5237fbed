package social

// toast 文案，与页面上展示的文本逐字一致
const (
	MsgMakeRequestFailed   = "There was an error trying to make your friend request. Please try again later."
	MsgMakeRequestSuccess  = "Successfully sent your friend request."
	MsgGetRequestsFailed   = "There was an error getting your friend requests. Please try again later."
	MsgHandleRequestFailed = "There was an error handling that friend request, please try again later."
	MsgAcceptedSuccess     = "Successfully accepted; that friend request."
	MsgRejectedSuccess     = "Successfully rejected that friend request."
)

// MsgFieldRequired 必填校验提示
const MsgFieldRequired = "This field is required"

// ModalState 弹窗状态
type ModalState string

const (
	ModalClosed     ModalState = "closed"
	ModalEditing    ModalState = "editing"
	ModalSubmitting ModalState = "submitting"
)
