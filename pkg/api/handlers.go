package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
}

type FriendServiceHandler interface {
	AddFriend(context.Context, *connect.Request[AddFriendRequest]) (*connect.Response[AddFriendResponse], error)
	ListFriends(context.Context, *connect.Request[ListFriendsRequest]) (*connect.Response[ListFriendsResponse], error)
	DeleteFriend(context.Context, *connect.Request[DeleteFriendRequest]) (*connect.Response[DeleteFriendResponse], error)
}

type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	UpdateGroup(context.Context, *connect.Request[UpdateGroupRequest]) (*connect.Response[UpdateGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error)
	GetGroupBalances(context.Context, *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error)
}

type LedgerServiceHandler interface {
	PreviewSplit(context.Context, *connect.Request[PreviewSplitRequest]) (*connect.Response[PreviewSplitResponse], error)
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	RecordPayment(context.Context, *connect.Request[RecordPaymentRequest]) (*connect.Response[RecordPaymentResponse], error)
	ListRecords(context.Context, *connect.Request[ListRecordsRequest]) (*connect.Response[ListRecordsResponse], error)
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	GetSpending(context.Context, *connect.Request[GetSpendingRequest]) (*connect.Response[GetSpendingResponse], error)
	ConvertToExact(context.Context, *connect.Request[ConvertToExactRequest]) (*connect.Response[ConvertToExactResponse], error)
}

// routes dispatches on the full procedure path below a service prefix.
type routes map[string]http.Handler

func (rs routes) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := rs[r.URL.Path]; ok {
		h.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)
}

// NewAuthServiceHandler returns the mount path and handler for svc.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + AuthServiceName + "/", routes{
		AuthRegisterProcedure:       connect.NewUnaryHandler(AuthRegisterProcedure, svc.Register, opts...),
		AuthLoginProcedure:          connect.NewUnaryHandler(AuthLoginProcedure, svc.Login, opts...),
		AuthGetCurrentUserProcedure: connect.NewUnaryHandler(AuthGetCurrentUserProcedure, svc.GetCurrentUser, opts...),
	}
}

// NewFriendServiceHandler returns the mount path and handler for svc.
func NewFriendServiceHandler(svc FriendServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + FriendServiceName + "/", routes{
		FriendAddFriendProcedure:    connect.NewUnaryHandler(FriendAddFriendProcedure, svc.AddFriend, opts...),
		FriendListFriendsProcedure:  connect.NewUnaryHandler(FriendListFriendsProcedure, svc.ListFriends, opts...),
		FriendDeleteFriendProcedure: connect.NewUnaryHandler(FriendDeleteFriendProcedure, svc.DeleteFriend, opts...),
	}
}

// NewGroupServiceHandler returns the mount path and handler for svc.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + GroupServiceName + "/", routes{
		GroupCreateGroupProcedure:      connect.NewUnaryHandler(GroupCreateGroupProcedure, svc.CreateGroup, opts...),
		GroupGetGroupProcedure:         connect.NewUnaryHandler(GroupGetGroupProcedure, svc.GetGroup, opts...),
		GroupListGroupsProcedure:       connect.NewUnaryHandler(GroupListGroupsProcedure, svc.ListGroups, opts...),
		GroupUpdateGroupProcedure:      connect.NewUnaryHandler(GroupUpdateGroupProcedure, svc.UpdateGroup, opts...),
		GroupDeleteGroupProcedure:      connect.NewUnaryHandler(GroupDeleteGroupProcedure, svc.DeleteGroup, opts...),
		GroupGetGroupBalancesProcedure: connect.NewUnaryHandler(GroupGetGroupBalancesProcedure, svc.GetGroupBalances, opts...),
	}
}

// NewLedgerServiceHandler returns the mount path and handler for svc.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + LedgerServiceName + "/", routes{
		LedgerPreviewSplitProcedure:   connect.NewUnaryHandler(LedgerPreviewSplitProcedure, svc.PreviewSplit, opts...),
		LedgerCreateExpenseProcedure:  connect.NewUnaryHandler(LedgerCreateExpenseProcedure, svc.CreateExpense, opts...),
		LedgerUpdateExpenseProcedure:  connect.NewUnaryHandler(LedgerUpdateExpenseProcedure, svc.UpdateExpense, opts...),
		LedgerDeleteExpenseProcedure:  connect.NewUnaryHandler(LedgerDeleteExpenseProcedure, svc.DeleteExpense, opts...),
		LedgerRecordPaymentProcedure:  connect.NewUnaryHandler(LedgerRecordPaymentProcedure, svc.RecordPayment, opts...),
		LedgerListRecordsProcedure:    connect.NewUnaryHandler(LedgerListRecordsProcedure, svc.ListRecords, opts...),
		LedgerGetBalancesProcedure:    connect.NewUnaryHandler(LedgerGetBalancesProcedure, svc.GetBalances, opts...),
		LedgerGetSpendingProcedure:    connect.NewUnaryHandler(LedgerGetSpendingProcedure, svc.GetSpending, opts...),
		LedgerConvertToExactProcedure: connect.NewUnaryHandler(LedgerConvertToExactProcedure, svc.ConvertToExact, opts...),
	}
}
