package social

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"navbar_social/internal/dao/memory"
	"navbar_social/internal/dto/request"
	"navbar_social/internal/dto/respond"
	"navbar_social/internal/friendsapi"
	"navbar_social/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI 记录调用并返回预设响应
type fakeAPI struct {
	mu sync.Mutex

	makeCalls   []string
	handleCalls []string
	listCalls   int

	makeRes   *friendsapi.AlertResult
	handleRes *friendsapi.AlertResult
	listRes   *friendsapi.ListResult
	err       error
}

func (f *fakeAPI) MakeRequest(_ context.Context, _ string, targetEmail string) (*friendsapi.AlertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.makeCalls = append(f.makeCalls, targetEmail)
	return f.makeRes, f.err
}

func (f *fakeAPI) GetFriendRequests(_ context.Context, _ string) (*friendsapi.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.listRes, f.err
}

func (f *fakeAPI) HandleRequest(_ context.Context, _ string, senderEmail string, status friendsapi.Status) (*friendsapi.AlertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handleCalls = append(f.handleCalls, senderEmail+":"+string(status))
	return f.handleRes, f.err
}

func (f *fakeAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// recordingPublisher 收集推送的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []respond.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt respond.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) ofType(typ string) []respond.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []respond.Event
	for _, e := range p.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func newTestService(t *testing.T, api friendsapi.API) (*Service, *recordingPublisher) {
	t.Helper()
	v, err := NewFormValidator("en")
	require.NoError(t, err)
	pub := &recordingPublisher{}
	return NewService(api, memory.New(time.Hour), pub, v, time.Minute, time.Hour), pub
}

func toastOf(t *testing.T, svc *Service, sessionID string) respond.ToastRespond {
	t.Helper()
	state, err := svc.State(context.Background(), sessionID)
	require.NoError(t, err)
	return state.Toast
}

func TestSubmitEmptyEmailIsRejectedWithoutCall(t *testing.T) {
	api := &fakeAPI{}
	svc, _ := newTestService(t, api)
	svc.OpenModal("s1")

	_, err := svc.Submit(context.Background(), "s1", "tok", request.FriendRequestForm{Email: ""})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string]string{"email": MsgFieldRequired}, verr.Fields)
	assert.Empty(t, api.makeCalls)

	state, _ := svc.State(context.Background(), "s1")
	assert.Equal(t, string(ModalEditing), state.Modal)
	assert.False(t, state.Toast.Visible)
}

func TestSubmitTooLongEmailIsRejectedWithoutCall(t *testing.T) {
	api := &fakeAPI{}
	svc, _ := newTestService(t, api)
	svc.OpenModal("s1")

	long := strings.Repeat("a", 250) + "@x.com"
	_, err := svc.Submit(context.Background(), "s1", "tok", request.FriendRequestForm{Email: long})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Empty(t, api.makeCalls)
}

func TestSubmitAstralEmailOverLimitIsRejectedWithoutCall(t *testing.T) {
	api := &fakeAPI{}
	svc, _ := newTestService(t, api)
	svc.OpenModal("s1")

	// 200 个表情 + 6 个字符 = 406 个 UTF-16 码元
	long := strings.Repeat("😀", 200) + "@x.com"
	_, err := svc.Submit(context.Background(), "s1", "tok", request.FriendRequestForm{Email: long})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, api.makeCalls)
}

func TestSubmitExactly255CharactersIsAccepted(t *testing.T) {
	api := &fakeAPI{makeRes: &friendsapi.AlertResult{StatusCode: http.StatusOK}}
	svc, _ := newTestService(t, api)
	svc.OpenModal("s1")

	email := strings.Repeat("a", 249) + "@x.com"
	require.Len(t, email, 255)
	_, err := svc.Submit(context.Background(), "s1", "tok", request.FriendRequestForm{Email: email})
	require.NoError(t, err)
	assert.Equal(t, []string{email}, api.makeCalls)
}

func TestSubmitToastMessages(t *testing.T) {
	cases := []struct {
		name string
		res  *friendsapi.AlertResult
		want string
	}{
		{"server alert", &friendsapi.AlertResult{StatusCode: 200, HasAlert: true, Alert: "X"}, "X"},
		{"default success", &friendsapi.AlertResult{StatusCode: 200}, MsgMakeRequestSuccess},
		{"client error", &friendsapi.AlertResult{StatusCode: 404, HasAlert: true, Alert: "ignored"}, MsgMakeRequestFailed},
		{"server error", &friendsapi.AlertResult{StatusCode: 500}, MsgMakeRequestFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{makeRes: tc.res}
			svc, pub := newTestService(t, api)
			svc.OpenModal("s1")

			out, err := svc.Submit(context.Background(), "s1", "tok", request.FriendRequestForm{Email: "b@x.com"})
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.Toast)
			assert.Equal(t, string(ModalClosed), out.Modal)

			toast := toastOf(t, svc, "s1")
			assert.True(t, toast.Visible)
			assert.Equal(t, tc.want, toast.Message)

			state, _ := svc.State(context.Background(), "s1")
			assert.Equal(t, string(ModalClosed), state.Modal)
			assert.Empty(t, state.Email)
			assert.Len(t, pub.ofType(respond.EventToast), 1)
		})
	}
}

func TestSubmitTransportFailureLeavesNoToast(t *testing.T) {
	api := &fakeAPI{err: errorx.Wrap(errors.New("refused"), errorx.CodeUpstreamTransport, "POST")}
	svc, _ := newTestService(t, api)
	svc.OpenModal("s1")

	_, err := svc.Submit(context.Background(), "s1", "tok", request.FriendRequestForm{Email: "b@x.com"})
	require.Error(t, err)
	assert.True(t, errorx.IsTransport(err))

	state, _ := svc.State(context.Background(), "s1")
	assert.False(t, state.Toast.Visible)
	assert.Equal(t, string(ModalEditing), state.Modal)
	assert.Equal(t, "b@x.com", state.Email)
}

func TestSubmitRequiresOpenModal(t *testing.T) {
	api := &fakeAPI{}
	svc, _ := newTestService(t, api)

	_, err := svc.Submit(context.Background(), "s1", "tok", request.FriendRequestForm{Email: "b@x.com"})
	require.Error(t, err)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
	assert.Empty(t, api.makeCalls)
}

func TestCloseModalResetsForm(t *testing.T) {
	svc, _ := newTestService(t, &fakeAPI{})
	svc.OpenModal("s1")
	_, _ = svc.Submit(context.Background(), "s1", "tok", request.FriendRequestForm{Email: ""})
	svc.CloseModal("s1")

	state, _ := svc.State(context.Background(), "s1")
	assert.Equal(t, string(ModalClosed), state.Modal)
	assert.Empty(t, state.Email)
}

func TestAcceptIncrementsRefreshAndReloads(t *testing.T) {
	api := &fakeAPI{
		handleRes: &friendsapi.AlertResult{StatusCode: 200},
		listRes:   &friendsapi.ListResult{StatusCode: 200, IsArray: true, Requests: []friendsapi.FriendRequest{}},
	}
	svc, _ := newTestService(t, api)

	out, err := svc.Accept(context.Background(), "s1", "tok", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, MsgAcceptedSuccess, out.Toast)
	assert.Equal(t, int64(1), out.Refresh)
	assert.Equal(t, []string{"a@x.com:accepted"}, api.handleCalls)

	state, _ := svc.State(context.Background(), "s1")
	assert.Equal(t, int64(1), state.Refresh)
	assert.Equal(t, MsgAcceptedSuccess, state.Toast.Message)

	assert.Eventually(t, func() bool { return api.listCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRejectDefaultMessage(t *testing.T) {
	api := &fakeAPI{
		handleRes: &friendsapi.AlertResult{StatusCode: 204},
		listRes:   &friendsapi.ListResult{StatusCode: 200, IsArray: true},
	}
	svc, _ := newTestService(t, api)

	out, err := svc.Reject(context.Background(), "s1", "tok", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Successfully rejected that friend request.", out.Toast)
	assert.Equal(t, []string{"a@x.com:rejected"}, api.handleCalls)
}

func TestHandleUsesServerAlert(t *testing.T) {
	api := &fakeAPI{
		handleRes: &friendsapi.AlertResult{StatusCode: 200, HasAlert: true, Alert: "Already friends"},
		listRes:   &friendsapi.ListResult{StatusCode: 200, IsArray: true},
	}
	svc, _ := newTestService(t, api)

	out, err := svc.Accept(context.Background(), "s1", "tok", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Already friends", out.Toast)
}

func TestHandleFailureDoesNotRefresh(t *testing.T) {
	api := &fakeAPI{handleRes: &friendsapi.AlertResult{StatusCode: 500}}
	svc, _ := newTestService(t, api)

	out, err := svc.Reject(context.Background(), "s1", "tok", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, MsgHandleRequestFailed, out.Toast)

	state, _ := svc.State(context.Background(), "s1")
	assert.Equal(t, int64(0), state.Refresh)
	assert.Never(t, func() bool { return api.listCount() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestConcurrentHandlesEachRefresh(t *testing.T) {
	api := &fakeAPI{
		handleRes: &friendsapi.AlertResult{StatusCode: 200},
		listRes:   &friendsapi.ListResult{StatusCode: 200, IsArray: true},
	}
	svc, _ := newTestService(t, api)

	var wg sync.WaitGroup
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		wg.Add(1)
		go func(e string) {
			defer wg.Done()
			_, _ = svc.Accept(context.Background(), "s1", "tok", e)
		}(email)
	}
	wg.Wait()

	state, _ := svc.State(context.Background(), "s1")
	assert.Equal(t, int64(3), state.Refresh)
	assert.Eventually(t, func() bool { return api.listCount() == 3 }, time.Second, 5*time.Millisecond)
}

func TestLoadInvitesRendersCards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"email":"a@x.com"}]`))
	}))
	defer srv.Close()

	svc, pub := newTestService(t, friendsapi.New(srv.URL, 0))
	state, err := svc.Mount(context.Background(), "s1", "tok")
	require.NoError(t, err)

	require.Len(t, state.Invites, 1)
	card := state.Invites[0]
	assert.Equal(t, "friend-a@x.com", card.Key)
	assert.Equal(t, "From: a@x.com", card.Text)
	require.Len(t, card.Actions, 2)
	assert.Equal(t, "Reject", card.Actions[0].Label)
	assert.Equal(t, "Accept", card.Actions[1].Label)
	assert.False(t, state.Toast.Visible)
	assert.Len(t, pub.ofType(respond.EventInvites), 1)
}

func TestLoadInvitesNonArrayIsSilent(t *testing.T) {
	api := &fakeAPI{listRes: &friendsapi.ListResult{StatusCode: 200, IsArray: false}}
	svc, _ := newTestService(t, api)

	state, err := svc.Mount(context.Background(), "s1", "tok")
	require.NoError(t, err)
	assert.Empty(t, state.Invites)
	assert.False(t, state.Toast.Visible)
}

func TestLoadInvitesFailureClearsAndToasts(t *testing.T) {
	api := &fakeAPI{listRes: &friendsapi.ListResult{StatusCode: 200, IsArray: true, Requests: []friendsapi.FriendRequest{{Email: "a@x.com"}}}}
	svc, _ := newTestService(t, api)
	_, err := svc.Mount(context.Background(), "s1", "tok")
	require.NoError(t, err)
	require.Len(t, svc.Invites("s1"), 1)

	api.listRes = &friendsapi.ListResult{StatusCode: 401}
	state, err := svc.Mount(context.Background(), "s1", "tok")
	require.NoError(t, err)
	assert.Empty(t, state.Invites)
	assert.Equal(t, MsgGetRequestsFailed, state.Toast.Message)
}

func TestLoadInvitesTransportFailureKeepsCards(t *testing.T) {
	api := &fakeAPI{listRes: &friendsapi.ListResult{StatusCode: 200, IsArray: true, Requests: []friendsapi.FriendRequest{{Email: "a@x.com"}}}}
	svc, _ := newTestService(t, api)
	_, err := svc.Mount(context.Background(), "s1", "tok")
	require.NoError(t, err)

	api.err = errorx.New(errorx.CodeUpstreamTransport, "GET")
	_, err = svc.Mount(context.Background(), "s1", "tok")
	require.Error(t, err)
	assert.Len(t, svc.Invites("s1"), 1)
	assert.False(t, toastOf(t, svc, "s1").Visible)
}

func TestLastToastWins(t *testing.T) {
	api := &fakeAPI{makeRes: &friendsapi.AlertResult{StatusCode: 200}, handleRes: &friendsapi.AlertResult{StatusCode: 500}}
	svc, _ := newTestService(t, api)
	svc.OpenModal("s1")

	_, err := svc.Submit(context.Background(), "s1", "tok", request.FriendRequestForm{Email: "b@x.com"})
	require.NoError(t, err)
	_, err = svc.Accept(context.Background(), "s1", "tok", "a@x.com")
	require.NoError(t, err)

	assert.Equal(t, MsgHandleRequestFailed, toastOf(t, svc, "s1").Message)
}

func TestDismissToast(t *testing.T) {
	api := &fakeAPI{handleRes: &friendsapi.AlertResult{StatusCode: 500}}
	svc, _ := newTestService(t, api)
	_, _ = svc.Accept(context.Background(), "s1", "tok", "a@x.com")

	require.NoError(t, svc.DismissToast(context.Background(), "s1"))
	assert.False(t, toastOf(t, svc, "s1").Visible)
}

func TestSessionsAreIsolated(t *testing.T) {
	api := &fakeAPI{handleRes: &friendsapi.AlertResult{StatusCode: 500}}
	svc, _ := newTestService(t, api)
	svc.OpenModal("s1")
	_, _ = svc.Accept(context.Background(), "s1", "tok", "a@x.com")

	state, _ := svc.State(context.Background(), "s2")
	assert.Equal(t, string(ModalClosed), state.Modal)
	assert.False(t, state.Toast.Visible)
}

func TestIdleWidgetsAreEvicted(t *testing.T) {
	svc, _ := newTestService(t, &fakeAPI{})
	now := time.Unix(1000, 0)
	svc.now = func() time.Time { return now }
	svc.lastSweep = now

	for i := 0; i < 1000; i++ {
		svc.Widget(fmt.Sprintf("s%d", i))
	}
	svc.Widget("busy").modal = ModalSubmitting
	assert.Len(t, svc.widgets, 1001)

	now = now.Add(30 * time.Minute)
	svc.Widget("recent")

	now = now.Add(31 * time.Minute)
	svc.Widget("fresh")

	// 空闲超过一小时的挂件被释放；提交中的与近期访问过的保留
	assert.Len(t, svc.widgets, 3)
	assert.Contains(t, svc.widgets, "busy")
	assert.Contains(t, svc.widgets, "recent")
	assert.Contains(t, svc.widgets, "fresh")
}

func TestEvictedSessionStartsClosed(t *testing.T) {
	svc, _ := newTestService(t, &fakeAPI{})
	now := time.Unix(1000, 0)
	svc.now = func() time.Time { return now }
	svc.lastSweep = now

	assert.Equal(t, "editing", svc.OpenModal("s1"))
	now = now.Add(2 * time.Hour)
	state, err := svc.State(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "closed", state.Modal)
}
